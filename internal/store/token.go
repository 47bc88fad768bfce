package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const DefaultTokenTTL = 20 * time.Hour

const acquireAttempts = 3

// Both statements target the partial unique index on (alert_id) WHERE NOT used.
const (
	unusedTokenConflict = "ON CONFLICT (alert_id) WHERE NOT used"
	replaceUnusedToken  = "DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at"
)

var tokenColumns = utils.StructTagValues(types.VerificationToken{})

// TokenRepository owns the one-time verification tokens. When enforceExpiry
// is set, expired tokens are neither returned as active nor consumable.
type TokenRepository struct {
	db            DB
	ttl           time.Duration
	enforceExpiry bool
	now           func() time.Time
}

func NewTokenRepository(db DB, ttl time.Duration, enforceExpiry bool) *TokenRepository {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenRepository{
		db:            db,
		ttl:           ttl,
		enforceExpiry: enforceExpiry,
		now:           time.Now,
	}
}

// Issue creates a fresh token for the alert. An unused token already bound to
// the alert is overwritten by the same statement, so its old value stops
// validating and the alert never holds more than one unused token.
func (r *TokenRepository) Issue(ctx context.Context, alertID int64) (*types.VerificationToken, error) {
	return r.insert(ctx, alertID, unusedTokenConflict+" "+replaceUnusedToken)
}

// Acquire returns the alert's unused token, issuing one when there is none.
// Concurrent callers converge on the same row through the unique index on
// unused tokens. The bool reports whether an existing token was returned.
func (r *TokenRepository) Acquire(ctx context.Context, alertID int64) (*types.VerificationToken, bool, error) {
	for range acquireAttempts {
		var (
			token *types.VerificationToken
			err   error
		)
		if r.enforceExpiry {
			// an expired unused token is replaced in place, a live one wins
			token, err = r.insert(ctx, alertID, unusedTokenConflict+" "+replaceUnusedToken+" WHERE "+tokenTableName+".expires_at <= ?", r.now())
		} else {
			token, err = r.insert(ctx, alertID, unusedTokenConflict+" DO NOTHING")
		}
		if err == nil {
			return token, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, err
		}

		active, err := r.ActiveToken(ctx, alertID)
		if err == nil {
			return active, true, nil
		}
		if !errors.Is(err, types.ErrTokenNotFound) {
			return nil, false, err
		}

		// the winning token was consumed before we could read it
	}

	return nil, false, fmt.Errorf("failed to acquire token for alert %d after %d attempts", alertID, acquireAttempts)
}

func (r *TokenRepository) insert(ctx context.Context, alertID int64, conflict string, conflictArgs ...any) (*types.VerificationToken, error) {
	now := r.now()
	expiresAt := now.Add(r.ttl)

	token := &types.VerificationToken{
		AlertID:   alertID,
		Token:     utils.VerificationToken(),
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	}

	query, args, err := psql().
		Insert(tokenTableName).
		Columns("alert_id", "token", "used", "expires_at", "created_at").
		Values(token.AlertID, token.Token, false, token.ExpiresAt, token.CreatedAt).
		Suffix(conflict+" RETURNING id", conflictArgs...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate issue token query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&token.ID); err != nil {
		return nil, fmt.Errorf("failed to issue token for alert %d: %w", alertID, err)
	}

	return token, nil
}

// ActiveToken returns the newest unused token for the alert.
func (r *TokenRepository) ActiveToken(ctx context.Context, alertID int64) (*types.VerificationToken, error) {
	builder := psql().
		Select(tokenColumns...).
		From(tokenTableName).
		Where(sq.Eq{"alert_id": alertID, "used": false}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)
	if r.enforceExpiry {
		builder = builder.Where(notExpired(r.now()))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate active token query: %w", err)
	}

	var token types.VerificationToken
	err = pgxscan.Get(ctx, r.db, &token, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to fetch active token for alert %d: %w", alertID, err)
	}

	return &token, nil
}

// ValidateAndConsume marks the token used in a single conditional UPDATE.
// Of two concurrent calls with the same token only one can match the
// used = false row, the other sees zero affected rows and gets ErrInvalidToken.
func (r *TokenRepository) ValidateAndConsume(ctx context.Context, alertID int64, token string) error {
	if token == "" {
		return types.ErrInvalidToken
	}

	now := r.now()

	builder := psql().
		Update(tokenTableName).
		Set("used", true).
		Set("used_at", now).
		Where(sq.Eq{"alert_id": alertID, "token": token, "used": false})
	if r.enforceExpiry {
		builder = builder.Where(notExpired(now))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate consume token query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to consume token for alert %d: %w", alertID, err)
	}

	if tag.RowsAffected() != 1 {
		return types.ErrInvalidToken
	}

	return nil
}

// Invalidate deletes every unused token of the alert. Consumed tokens stay as history.
func (r *TokenRepository) Invalidate(ctx context.Context, alertID int64) error {
	query, args, err := psql().
		Delete(tokenTableName).
		Where(sq.Eq{"alert_id": alertID, "used": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate invalidate token query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to invalidate tokens")
}

func (r *TokenRepository) TokensByAlert(ctx context.Context, alertID int64) ([]*types.VerificationToken, error) {
	query, args, err := psql().
		Select(tokenColumns...).
		From(tokenTableName).
		Where(sq.Eq{"alert_id": alertID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens query: %w", err)
	}

	tokens := make([]*types.VerificationToken, 0)
	if err := pgxscan.Select(ctx, r.db, &tokens, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch tokens for alert %d: %w", alertID, err)
	}

	return tokens, nil
}

func notExpired(now time.Time) sq.Or {
	return sq.Or{
		sq.Eq{"expires_at": nil},
		sq.Gt{"expires_at": now},
	}
}
