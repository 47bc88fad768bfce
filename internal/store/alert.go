package store

import (
	"context"
	"fmt"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var alertColumns = utils.StructTagValues(types.Alert{})

type AlertRepository struct {
	db DB
}

func NewAlertRepository(db DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Alert(ctx context.Context, alertID int64) (*types.Alert, error) {
	query, args, err := psql().
		Select(alertColumns...).
		From(alertTableName).
		Where(sq.Eq{"id": alertID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert query: %w", err)
	}

	var alert types.Alert
	err = pgxscan.Get(ctx, r.db, &alert, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to fetch alert %d: %w", alertID, err)
	}

	return &alert, nil
}

// Create inserts a new intake record and sets its ID.
func (r *AlertRepository) Create(ctx context.Context, alert *types.Alert) error {
	now := time.Now()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	if alert.Date == nil {
		alert.Date = utils.TimePtr(now)
	}
	if alert.Time == nil {
		alert.Time = utils.StringPtr(now.Format("15:04"))
	}
	if alert.Status == nil {
		alert.Status = utils.StringPtr(string(types.AlertStatusPending))
	}
	if alert.AlertFrom == nil {
		alert.AlertFrom = utils.StringPtr(types.DefaultAlertFrom)
	}

	alertMap := utils.StructToMap(alert)
	delete(alertMap, "id")
	alertMap["is_verified"] = false

	query, args, err := psql().
		Insert(alertTableName).
		SetMap(alertMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create alert query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&alert.ID)
	return utils.ErrorWrapOrNil(err, "failed to create alert")
}

// ApplyVerification overwrites the verification columns of one alert and
// marks it verified. Intake columns are left alone.
func (r *AlertRepository) ApplyVerification(ctx context.Context, alertID int64, v *types.Verification) error {
	setMap := utils.StructToMap(v)
	setMap["status"] = string(v.Status)
	setMap["is_verified"] = true
	setMap["updated_at"] = time.Now()

	query, args, err := psql().
		Update(alertTableName).
		SetMap(setMap).
		Where(sq.Eq{"id": alertID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate verification update for alert %d: %w", alertID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply verification to alert %d: %w", alertID, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrAlertNotFound
	}

	return nil
}

func (r *AlertRepository) ContactSummary(ctx context.Context, alertID int64) (*types.ContactSummary, error) {
	query, args, err := psql().
		Select("contact_number", "person_reporting").
		From(alertTableName).
		Where(sq.Eq{"id": alertID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact summary query: %w", err)
	}

	var summary types.ContactSummary
	err = pgxscan.Get(ctx, r.db, &summary, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to fetch contact summary for alert %d: %w", alertID, err)
	}

	return &summary, nil
}

// List returns one page of the call log, newest first.
func (r *AlertRepository) List(ctx context.Context, filter *types.AlertFilter, caller *types.Caller, pageSize uint64) (*types.AlertPage, error) {
	if pageSize == 0 {
		pageSize = 50
	}
	if filter == nil {
		filter = new(types.AlertFilter)
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}

	total, err := r.Count(ctx, filter, caller)
	if err != nil {
		return nil, err
	}

	pred := AlertPredicate(filter, caller)

	listQuery := psql().
		Select(alertColumns...).
		From(alertTableName).
		OrderBy("created_at DESC", "id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize)
	if len(pred) > 0 {
		listQuery = listQuery.Where(pred)
	}

	query, args, err := listQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert list query: %w", err)
	}

	alerts := make([]*types.Alert, 0)
	if err := pgxscan.Select(ctx, r.db, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return &types.AlertPage{
		Alerts:     alerts,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Count returns how many alerts match the filter within the caller's scope.
func (r *AlertRepository) Count(ctx context.Context, filter *types.AlertFilter, caller *types.Caller) (uint64, error) {
	builder := psql().Select("count(*)").From(alertTableName)
	if pred := AlertPredicate(filter, caller); len(pred) > 0 {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate alert count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	return uint64(count), nil
}

// Counts buckets alerts by verification state and age relative to now.
func (r *AlertRepository) Counts(ctx context.Context, now time.Time) (*types.AlertCounts, error) {
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	query, args, err := psql().
		Select().
		Column(sq.Expr("count(*) FILTER (WHERE is_verified) AS verified")).
		Column(sq.Expr("count(*) FILTER (WHERE NOT is_verified AND created_at > ?) AS not_verified_under_hour", hourAgo)).
		Column(sq.Expr("count(*) FILTER (WHERE NOT is_verified AND created_at <= ?) AS not_verified_over_hour", hourAgo)).
		Column(sq.Expr("count(*) FILTER (WHERE NOT is_verified AND created_at <= ?) AS not_verified_over_day", dayAgo)).
		From(alertTableName).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert counts query: %w", err)
	}

	var counts types.AlertCounts
	if err := pgxscan.Get(ctx, r.db, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	return &counts, nil
}
