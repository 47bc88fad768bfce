package verification

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ValidationError lists the fields a submission got wrong, keyed by form name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid verification form: " + strings.Join(names, ", ")
}

// Normalize validates a raw submission and converts it to the stored form:
// CIF upper-cased, checklists joined with ", ", blanks as nil.
func Normalize(form *types.VerificationForm) (*types.Verification, error) {
	if form == nil {
		form = new(types.VerificationForm)
	}

	fieldErrors := map[string]string{}

	v := &types.Verification{
		AlertCase: types.AlertCase{
			SourceOfAlert:              utils.TrimmedPtr(form.SourceOfAlert),
			AlertCaseName:              utils.TrimmedPtr(form.AlertCaseName),
			AlertCaseSex:               utils.TrimmedPtr(form.AlertCaseSex),
			AlertCaseVillage:           utils.TrimmedPtr(form.AlertCaseVillage),
			AlertCaseParish:            utils.TrimmedPtr(form.AlertCaseParish),
			AlertCaseSubCounty:         utils.TrimmedPtr(form.AlertCaseSubCounty),
			AlertCaseDistrict:          utils.TrimmedPtr(form.AlertCaseDistrict),
			AlertCaseNationality:       utils.TrimmedPtr(form.AlertCaseNationality),
			Region:                     utils.TrimmedPtr(form.Region),
			PointOfContactName:         utils.TrimmedPtr(form.PointOfContactName),
			PointOfContactRelationship: utils.TrimmedPtr(form.PointOfContactRelationship),
			PointOfContactPhone:        utils.TrimmedPtr(form.PointOfContactPhone),
		},
		History:                JoinChecklist(form.History),
		Symptoms:               JoinChecklist(form.Symptoms),
		HealthFacilityVisit:    utils.TrimmedPtr(form.HealthFacilityVisit),
		TraditionalHealerVisit: utils.TrimmedPtr(form.TraditionalHealerVisit),
		Actions:                utils.TrimmedPtr(form.Actions),
		Feedback:               utils.TrimmedPtr(form.Feedback),
		VerifiedBy:             strings.TrimSpace(form.VerifiedBy),
	}

	switch status := types.AlertStatus(strings.TrimSpace(form.Status)); status {
	case types.AlertStatusAlive, types.AlertStatusDead:
		v.Status = status
	case "":
		fieldErrors["status"] = "status is required"
	default:
		fieldErrors["status"] = "status must be Alive or Dead"
	}

	if date := strings.TrimSpace(form.VerificationDate); date == "" {
		fieldErrors["verification_date"] = "verification date is required"
	} else if parsed, err := time.Parse(DateLayout, date); err != nil {
		fieldErrors["verification_date"] = "verification date must be YYYY-MM-DD"
	} else {
		v.VerificationDate = parsed
	}

	if clock := strings.TrimSpace(form.VerificationTime); clock == "" {
		fieldErrors["verification_time"] = "verification time is required"
	} else if parsed, err := parseClock(clock); err != nil {
		fieldErrors["verification_time"] = "verification time must be HH:MM"
	} else {
		v.VerificationTime = parsed.Format(TimeLayout)
	}

	if cif := utils.TrimmedPtr(form.CIFNo); cif != nil {
		v.CIFNo = utils.StringPtr(strings.ToUpper(*cif))
	}

	if age, err := optionalInt(form.AlertCaseAge); err != nil {
		fieldErrors["alert_case_age"] = "age must be a whole number"
	} else {
		v.AlertCaseAge = age
	}

	if months, err := optionalInt(form.AlertCasePregnantDuration); err != nil {
		fieldErrors["alert_case_pregnant_duration"] = "pregnant duration must be a whole number of months"
	} else {
		v.AlertCasePregnantDuration = months
	}

	if v.VerifiedBy == "" {
		fieldErrors["verified_by"] = "verified by is required"
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	return v, nil
}

// JoinChecklist trims the selected items, drops blanks and joins the rest
// with ", ". No selections gives nil.
func JoinChecklist(items []string) *string {
	selected := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		selected = append(selected, item)
	}

	if len(selected) == 0 {
		return nil
	}

	return utils.StringPtr(strings.Join(selected, ", "))
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

func optionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, strconv.ErrSyntax
	}

	return &n, nil
}
