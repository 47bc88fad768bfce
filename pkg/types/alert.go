package types

import (
	"time"
)

type AlertStatus string

const (
	AlertStatusPending AlertStatus = "Pending"
	AlertStatusAlive   AlertStatus = "Alive"
	AlertStatusDead    AlertStatus = "Dead"
)

const DefaultAlertFrom = "Open Alerts"

type Alert struct {
	ID int64 `db:"id" json:"id"`

	AlertIntake
	AlertCase

	// Verification
	Status           *string    `db:"status" json:"status"`
	VerificationDate *time.Time `db:"verification_date" json:"verification_date"`
	VerificationTime *string    `db:"verification_time" json:"verification_time"`
	CIFNo            *string    `db:"cif_no" json:"cif_no"`
	History          *string    `db:"history" json:"history"`
	Symptoms         *string    `db:"symptoms" json:"symptoms"`
	HealthFacility   *string    `db:"health_facility_visit" json:"health_facility_visit"`
	TraditionalVisit *string    `db:"traditional_healer_visit" json:"traditional_healer_visit"`
	Actions          *string    `db:"actions" json:"actions"`
	Feedback         *string    `db:"feedback" json:"feedback"`
	IsVerified       bool       `db:"is_verified" json:"is_verified"`
	VerifiedBy       *string    `db:"verified_by" json:"verified_by"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AlertIntake holds what the call-taker records when the alert comes in.
type AlertIntake struct {
	Date                *time.Time `db:"date" json:"date"`
	Time                *string    `db:"time" json:"time"`
	CallTaker           *string    `db:"call_taker" json:"call_taker"`
	PersonReporting     *string    `db:"person_reporting" json:"person_reporting"`
	ContactNumber       *string    `db:"contact_number" json:"contact_number"`
	Village             *string    `db:"village" json:"village"`
	SubCounty           *string    `db:"sub_county" json:"sub_county"`
	AlertFrom           *string    `db:"alert_from" json:"alert_from"`
	AlertReportedBefore *string    `db:"alert_reported_before" json:"alert_reported_before"`
	Narrative           *string    `db:"narrative" json:"narrative"`
}

// AlertCase holds the case demographics and location. The call-taker sets
// them at intake and the verifier may correct them.
type AlertCase struct {
	SourceOfAlert              *string `db:"source_of_alert" json:"source_of_alert"`
	AlertCaseName              *string `db:"alert_case_name" json:"alert_case_name"`
	AlertCaseAge               *int    `db:"alert_case_age" json:"alert_case_age"`
	AlertCaseSex               *string `db:"alert_case_sex" json:"alert_case_sex"`
	AlertCasePregnantDuration  *int    `db:"alert_case_pregnant_duration" json:"alert_case_pregnant_duration"`
	AlertCaseVillage           *string `db:"alert_case_village" json:"alert_case_village"`
	AlertCaseParish            *string `db:"alert_case_parish" json:"alert_case_parish"`
	AlertCaseSubCounty         *string `db:"alert_case_sub_county" json:"alert_case_sub_county"`
	AlertCaseDistrict          *string `db:"alert_case_district" json:"alert_case_district"`
	AlertCaseNationality       *string `db:"alert_case_nationality" json:"alert_case_nationality"`
	Region                     *string `db:"region" json:"region"`
	PointOfContactName         *string `db:"point_of_contact_name" json:"point_of_contact_name"`
	PointOfContactRelationship *string `db:"point_of_contact_relationship" json:"point_of_contact_relationship"`
	PointOfContactPhone        *string `db:"point_of_contact_phone" json:"point_of_contact_phone"`
}

// Verification is the normalized subset of an alert written by a successful
// verification submission. Nil pointers are stored as NULL.
type Verification struct {
	AlertCase

	Status                 AlertStatus `db:"status"`
	VerificationDate       time.Time   `db:"verification_date"`
	VerificationTime       string      `db:"verification_time"`
	CIFNo                  *string     `db:"cif_no"`
	History                *string     `db:"history"`
	Symptoms               *string     `db:"symptoms"`
	HealthFacilityVisit    *string     `db:"health_facility_visit"`
	TraditionalHealerVisit *string     `db:"traditional_healer_visit"`
	Actions                *string     `db:"actions"`
	Feedback               *string     `db:"feedback"`
	VerifiedBy             string      `db:"verified_by"`
}

// VerificationForm is the raw verification submission as posted by the form.
type VerificationForm struct {
	Status           string `form:"status"`
	VerificationDate string `form:"verification_date"`
	VerificationTime string `form:"verification_time"`
	CIFNo            string `form:"cif_no"`

	SourceOfAlert              string `form:"source_of_alert"`
	AlertCaseName              string `form:"alert_case_name"`
	AlertCaseAge               string `form:"alert_case_age"`
	AlertCaseSex               string `form:"alert_case_sex"`
	AlertCasePregnantDuration  string `form:"alert_case_pregnant_duration"`
	AlertCaseVillage           string `form:"alert_case_village"`
	AlertCaseParish            string `form:"alert_case_parish"`
	AlertCaseSubCounty         string `form:"alert_case_sub_county"`
	AlertCaseDistrict          string `form:"alert_case_district"`
	AlertCaseNationality       string `form:"alert_case_nationality"`
	Region                     string `form:"region"`
	PointOfContactName         string `form:"point_of_contact_name"`
	PointOfContactRelationship string `form:"point_of_contact_relationship"`
	PointOfContactPhone        string `form:"point_of_contact_phone"`

	History                []string `form:"history"`
	Symptoms               []string `form:"symptoms"`
	HealthFacilityVisit    string   `form:"health_facility_visit"`
	TraditionalHealerVisit string   `form:"traditional_healer_visit"`
	Actions                string   `form:"actions"`
	Feedback               string   `form:"feedback"`
	VerifiedBy             string   `form:"verified_by"`
}

type ContactSummary struct {
	ContactNumber   *string `db:"contact_number"`
	PersonReporting *string `db:"person_reporting"`
}

type AlertCounts struct {
	Verified             int64 `db:"verified" json:"verified"`
	NotVerifiedUnderHour int64 `db:"not_verified_under_hour" json:"not_verified_under_1h"`
	NotVerifiedOverHour  int64 `db:"not_verified_over_hour" json:"not_verified_over_1h"`
	NotVerifiedOverDay   int64 `db:"not_verified_over_day" json:"not_verified_over_24h"`
}
