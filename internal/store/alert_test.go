package store

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setColumns pulls the assigned column names out of an UPDATE statement.
func setColumns(t *testing.T, sql string) []string {
	t.Helper()

	start := strings.Index(sql, " SET ")
	end := strings.Index(sql, " WHERE ")
	require.True(t, start > 0 && end > start, "unexpected update statement: %s", sql)

	var cols []string
	for _, assignment := range strings.Split(sql[start+len(" SET "):end], ", ") {
		cols = append(cols, strings.SplitN(assignment, " = ", 2)[0])
	}
	sort.Strings(cols)
	return cols
}

func TestApplyVerificationWritesOnlyVerificationColumns(t *testing.T) {
	db := &recordingDB{rowsAffected: 1}
	repo := NewAlertRepository(db)

	v := &types.Verification{
		AlertCase:        types.AlertCase{AlertCaseName: utils.StringPtr("John Doe")},
		Status:           types.AlertStatusAlive,
		VerificationDate: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		VerificationTime: "09:30",
		CIFNo:            utils.StringPtr("CIF-007"),
		VerifiedBy:       "district.officer",
	}

	require.NoError(t, repo.ApplyVerification(context.Background(), 42, v))

	q := db.last()
	assert.True(t, strings.HasPrefix(q.sql, "UPDATE alerts SET "))
	assert.True(t, strings.HasSuffix(q.sql, "WHERE id = $28"), q.sql)
	assert.Equal(t, int64(42), q.args[len(q.args)-1])

	want := []string{
		"actions", "alert_case_age", "alert_case_district", "alert_case_name",
		"alert_case_nationality", "alert_case_parish", "alert_case_pregnant_duration",
		"alert_case_sex", "alert_case_sub_county", "alert_case_village", "cif_no",
		"feedback", "health_facility_visit", "history", "is_verified",
		"point_of_contact_name", "point_of_contact_phone", "point_of_contact_relationship",
		"region", "source_of_alert", "status", "symptoms", "traditional_healer_visit",
		"updated_at", "verification_date", "verification_time", "verified_by",
	}
	assert.Equal(t, want, setColumns(t, q.sql))

	assert.Contains(t, q.args, "Alive")
	assert.Contains(t, q.args, true)
}

func TestApplyVerificationMissingAlert(t *testing.T) {
	repo := NewAlertRepository(&recordingDB{rowsAffected: 0})

	err := repo.ApplyVerification(context.Background(), 9, &types.Verification{Status: types.AlertStatusDead})
	require.ErrorIs(t, err, types.ErrAlertNotFound)
}

func TestApplyVerificationStoreFailure(t *testing.T) {
	repo := NewAlertRepository(&recordingDB{err: assert.AnError})

	err := repo.ApplyVerification(context.Background(), 9, &types.Verification{Status: types.AlertStatusDead})
	require.ErrorIs(t, err, assert.AnError)
}

func TestCreateAlertDefaults(t *testing.T) {
	db := &recordingDB{scanID: 101}
	repo := NewAlertRepository(db)

	alert := &types.Alert{
		AlertIntake: types.AlertIntake{PersonReporting: utils.StringPtr("Jane Okello")},
		AlertCase:   types.AlertCase{AlertCaseName: utils.StringPtr("John Doe")},
	}

	require.NoError(t, repo.Create(context.Background(), alert))

	assert.Equal(t, int64(101), alert.ID)
	assert.Equal(t, string(types.AlertStatusPending), utils.PtrString(alert.Status))
	assert.Equal(t, types.DefaultAlertFrom, utils.PtrString(alert.AlertFrom))
	assert.NotNil(t, alert.Date)
	assert.NotNil(t, alert.Time)
	assert.False(t, alert.IsVerified)

	q := db.last()
	assert.True(t, strings.HasPrefix(q.sql, "INSERT INTO alerts ("))
	assert.True(t, strings.HasSuffix(q.sql, "RETURNING id"))
	assert.NotContains(t, q.sql, "(id,")
	assert.NotContains(t, q.sql, ",id,")
}

func TestCountAppliesScope(t *testing.T) {
	db := &recordingDB{scanID: 12}
	repo := NewAlertRepository(db)

	caller := &types.Caller{Username: "north", UserType: types.UserTypeREOC, Affiliation: "North"}
	total, err := repo.Count(context.Background(), &types.AlertFilter{}, caller)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), total)

	q := db.last()
	assert.Equal(t, "SELECT count(*) FROM alerts WHERE (region = $1)", q.sql)
	assert.Equal(t, []any{"North"}, q.args)
}

func TestCountWithoutFilters(t *testing.T) {
	db := &recordingDB{scanID: 3}
	repo := NewAlertRepository(db)

	total, err := repo.Count(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, "SELECT count(*) FROM alerts", db.last().sql)
}

func TestAlertQuery(t *testing.T) {
	db := &recordingDB{results: []*stubRows{newStubRows("id", "alert_case_name", "is_verified").add(int64(7), utils.StringPtr("John Doe"), true)}}
	repo := NewAlertRepository(db)

	alert, err := repo.Alert(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), alert.ID)
	assert.Equal(t, "John Doe", utils.PtrString(alert.AlertCaseName))
	assert.True(t, alert.IsVerified)

	q := db.last()
	assert.True(t, strings.HasPrefix(q.sql, "SELECT id, date, time, call_taker, "), q.sql)
	assert.True(t, strings.HasSuffix(q.sql, ", created_at, updated_at FROM alerts WHERE id = $1 LIMIT 1"), q.sql)
	assert.Equal(t, []any{int64(7)}, q.args)

	_, err = repo.Alert(context.Background(), 8)
	require.ErrorIs(t, err, types.ErrAlertNotFound)
}

func TestContactSummary(t *testing.T) {
	db := &recordingDB{results: []*stubRows{
		newStubRows("contact_number", "person_reporting").add(utils.StringPtr("0772000000"), utils.StringPtr("Jane Okello")),
	}}
	repo := NewAlertRepository(db)

	summary, err := repo.ContactSummary(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "0772000000", utils.PtrString(summary.ContactNumber))
	assert.Equal(t, "Jane Okello", utils.PtrString(summary.PersonReporting))

	q := db.last()
	assert.Equal(t, "SELECT contact_number, person_reporting FROM alerts WHERE id = $1", q.sql)
	assert.Equal(t, []any{int64(42)}, q.args)
}

func TestContactSummaryMissingAlert(t *testing.T) {
	repo := NewAlertRepository(&recordingDB{})

	_, err := repo.ContactSummary(context.Background(), 42)
	require.ErrorIs(t, err, types.ErrAlertNotFound)
}

func TestListPaginates(t *testing.T) {
	db := &recordingDB{
		scanID: 25,
		results: []*stubRows{
			newStubRows("id", "alert_case_name").
				add(int64(7), utils.StringPtr("John Doe")).
				add(int64(6), nil),
		},
	}
	repo := NewAlertRepository(db)

	caller := &types.Caller{Username: "north", UserType: types.UserTypeREOC, Affiliation: "North"}
	page, err := repo.List(context.Background(), &types.AlertFilter{Page: 3}, caller, 10)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), page.Page)
	assert.Equal(t, uint64(10), page.PageSize)
	assert.Equal(t, uint64(25), page.TotalRows)
	assert.Equal(t, uint64(3), page.TotalPages)
	require.Len(t, page.Alerts, 2)
	assert.Equal(t, int64(7), page.Alerts[0].ID)
	assert.Equal(t, "John Doe", utils.PtrString(page.Alerts[0].AlertCaseName))
	assert.Nil(t, page.Alerts[1].AlertCaseName)

	require.Len(t, db.queries, 2)
	assert.Equal(t, "SELECT count(*) FROM alerts WHERE (region = $1)", db.queries[0].sql)

	q := db.queries[1]
	assert.True(t, strings.HasPrefix(q.sql, "SELECT id, date, time, "), q.sql)
	assert.True(t, strings.HasSuffix(q.sql, " FROM alerts WHERE (region = $1) ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 20"), q.sql)
	assert.Equal(t, []any{"North"}, q.args)
}

func TestListDefaults(t *testing.T) {
	db := &recordingDB{}
	repo := NewAlertRepository(db)

	page, err := repo.List(context.Background(), nil, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), page.Page)
	assert.Equal(t, uint64(50), page.PageSize)
	assert.Zero(t, page.TotalPages)
	assert.NotNil(t, page.Alerts)
	assert.Empty(t, page.Alerts)
	assert.True(t, strings.HasSuffix(db.last().sql, " FROM alerts ORDER BY created_at DESC, id DESC LIMIT 50 OFFSET 0"), db.last().sql)
}

func TestCounts(t *testing.T) {
	db := &recordingDB{results: []*stubRows{
		newStubRows("verified", "not_verified_under_hour", "not_verified_over_hour", "not_verified_over_day").
			add(int64(4), int64(2), int64(3), int64(1)),
	}}
	repo := NewAlertRepository(db)

	counts, err := repo.Counts(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, &types.AlertCounts{Verified: 4, NotVerifiedUnderHour: 2, NotVerifiedOverHour: 3, NotVerifiedOverDay: 1}, counts)

	q := db.last()
	assert.Equal(t, "SELECT count(*) FILTER (WHERE is_verified) AS verified, "+
		"count(*) FILTER (WHERE NOT is_verified AND created_at > $1) AS not_verified_under_hour, "+
		"count(*) FILTER (WHERE NOT is_verified AND created_at <= $2) AS not_verified_over_hour, "+
		"count(*) FILTER (WHERE NOT is_verified AND created_at <= $3) AS not_verified_over_day FROM alerts", q.sql)
	assert.Equal(t, []any{fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour), fixedNow.Add(-24 * time.Hour)}, q.args)
}
