package store

import (
	"alertsmis/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

// AlertPredicate builds the call-log WHERE clause. Role scoping clauses
// are ANDed; the caller's search inputs are ORed together and the group is
// ANDed onto the scope. An empty result means no filtering.
func AlertPredicate(filter *types.AlertFilter, caller *types.Caller) sq.And {
	var pred = sq.And{}

	if filter == nil {
		filter = new(types.AlertFilter)
	}

	userType := types.UserTypeNational
	if caller != nil {
		userType = caller.UserType
	}

	switch userType {
	case types.UserTypeDistrict:
		district := filter.District
		if district == "" {
			district = caller.Affiliation
		}
		pred = append(pred, sq.Eq{"alert_case_district": district})
	case types.UserTypeREOC:
		pred = append(pred, sq.Eq{"region": caller.Affiliation})
	}

	var search = sq.Or{}

	if filter.Region != "" {
		search = append(search, sq.Eq{"region": filter.Region})
	}

	if userType != types.UserTypeDistrict && filter.District != "" {
		search = append(search, sq.Eq{"alert_case_district": filter.District})
	}

	if filter.FromDate != "" && filter.ToDate != "" {
		search = append(search, sq.Expr("date BETWEEN ? AND ?", filter.FromDate, filter.ToDate))
	}

	if filter.AlertID > 0 {
		search = append(search, sq.Eq{"id": filter.AlertID})
	}

	if filter.AlertCaseName != "" {
		search = append(search, sq.ILike{"alert_case_name": "%" + filter.AlertCaseName + "%"})
	}

	if filter.PersonReporting != "" {
		search = append(search, sq.ILike{"person_reporting": "%" + filter.PersonReporting + "%"})
	}

	if filter.District != "" {
		search = append(search, sq.ILike{"alert_case_district": "%" + filter.District + "%"})
	}

	if len(search) > 0 {
		pred = append(pred, search)
	}

	return pred
}
