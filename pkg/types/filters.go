package types

// AlertFilter carries the call-log search inputs. Empty fields are ignored.
type AlertFilter struct {
	Region          string `form:"region" json:"region"`
	District        string `form:"alert_case_district" json:"alert_case_district"`
	FromDate        string `form:"from_date" json:"from_date"`
	ToDate          string `form:"to_date" json:"to_date"`
	AlertID         int64  `form:"id" json:"id"`
	AlertCaseName   string `form:"alert_case_name" json:"alert_case_name"`
	PersonReporting string `form:"person_reporting" json:"person_reporting"`
	Page            uint64 `form:"page" json:"page"`
}

type AlertPage struct {
	Alerts     []*Alert `json:"alerts"`
	Page       uint64   `json:"page"`
	PageSize   uint64   `json:"page_size"`
	TotalRows  uint64   `json:"total_rows"`
	TotalPages uint64   `json:"total_pages"`
}
