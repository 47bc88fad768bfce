package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var userColumns = utils.StructTagValues(types.Responder{})

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// EscalationRecipients lists users whose affiliation is in the given set and
// who have an email address.
func (r *UserRepository) EscalationRecipients(ctx context.Context, affiliations []string) ([]*types.Responder, error) {
	if len(affiliations) == 0 {
		return []*types.Responder{}, nil
	}

	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"affiliation": affiliations}).
		Where(sq.NotEq{"email": ""}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipients query: %w", err)
	}

	users := make([]*types.Responder, 0)
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch escalation recipients: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *types.Responder) error {
	now := time.Now()

	query, args, err := psql().
		Insert(userTableName).
		Columns("username", "email", "given_name", "family_name", "affiliation", "user_type", "created_at", "updated_at").
		Values(
			strings.TrimSpace(user.Username),
			strings.TrimSpace(user.Email),
			user.GivenName,
			user.FamilyName,
			user.Affiliation,
			user.UserType,
			now,
			now,
		).
		Suffix("ON CONFLICT (username) DO UPDATE SET email = EXCLUDED.email, given_name = EXCLUDED.given_name, family_name = EXCLUDED.family_name, affiliation = EXCLUDED.affiliation, user_type = EXCLUDED.user_type, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert user query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.Username, err)
	}

	return nil
}
