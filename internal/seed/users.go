package seed

import (
	"context"
	"fmt"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"
)

type ResponderStore interface {
	Upsert(ctx context.Context, user *types.Responder) error
}

type responderSeed struct {
	Username    string
	Email       string
	GivenName   string
	FamilyName  string
	Affiliation string
	UserType    types.UserType
}

// The escalation directory. Affiliations must match ESCALATION_AFFILIATIONS.
var responders = []responderSeed{
	{Username: "ems.dispatch", Email: "ems.dispatch+seed@example.org", GivenName: "EMS", FamilyName: "Dispatch", Affiliation: "EMS", UserType: types.UserTypeNational},
	{Username: "moh.callcentre", Email: "callcentre+seed@example.org", GivenName: "MoH", FamilyName: "Call Centre", Affiliation: "MoH Call Centre", UserType: types.UserTypeNational},
	{Username: "reoc.north", Email: "reoc.north+seed@example.org", GivenName: "REOC", FamilyName: "North", Affiliation: "REOC", UserType: types.UserTypeREOC},
	{Username: "gulu.dso", Email: "gulu.dso+seed@example.org", GivenName: "Gulu", FamilyName: "DSO", Affiliation: "Gulu", UserType: types.UserTypeDistrict},
}

// SeedResponders upserts the directory entries above by username.
func SeedResponders(ctx context.Context, repo ResponderStore) (int, error) {
	seeded := 0
	for _, r := range responders {
		userType := string(r.UserType)
		user := &types.Responder{
			Username:    r.Username,
			Email:       r.Email,
			GivenName:   utils.StringPtr(r.GivenName),
			FamilyName:  utils.StringPtr(r.FamilyName),
			Affiliation: r.Affiliation,
			UserType:    &userType,
		}

		if err := repo.Upsert(ctx, user); err != nil {
			return seeded, fmt.Errorf("failed to upsert responder %s: %w", r.Username, err)
		}
		seeded++
	}

	return seeded, nil
}
