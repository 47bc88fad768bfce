package types

import "time"

type VerificationToken struct {
	ID        int64      `db:"id" json:"-"`
	AlertID   int64      `db:"alert_id" json:"alert_id"`
	Token     string     `db:"token" json:"token"`
	Used      bool       `db:"used" json:"used"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token carries an expiry that has passed.
// Tokens without an expiry never expire.
func (t *VerificationToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
