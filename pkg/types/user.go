package types

import "time"

type UserType string

const (
	UserTypeDistrict UserType = "District"
	UserTypeREOC     UserType = "REOC"
	UserTypeNational UserType = "National"
)

// Responder is a directory entry that can receive escalation notifications.
type Responder struct {
	ID          int64     `db:"id"`
	Username    string    `db:"username"`
	Email       string    `db:"email"`
	GivenName   *string   `db:"given_name"`
	FamilyName  *string   `db:"family_name"`
	Affiliation string    `db:"affiliation"`
	UserType    *string   `db:"user_type"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *Responder) DisplayName() string {
	name := ""
	if r.GivenName != nil {
		name = *r.GivenName
	}
	if r.FamilyName != nil {
		if name != "" {
			name += " "
		}
		name += *r.FamilyName
	}
	if name == "" {
		return r.Username
	}
	return name
}

// Caller identifies whoever is making the current request. It travels in the
// request context and scopes listing queries.
type Caller struct {
	Username    string   `json:"u"`
	UserType    UserType `json:"t"`
	Affiliation string   `json:"a"`
	Level       string   `json:"l,omitempty"`
}
