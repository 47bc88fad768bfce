package main

import (
	"fmt"

	"alertsmis/internal/server"
	"alertsmis/pkg/types"

	"github.com/urfave/cli/v2"
)

var sessionCommand = &cli.Command{
	Name:  "session",
	Usage: "Mint a session cookie value for a caller",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "District, REOC or National", Value: string(types.UserTypeNational)},
		&cli.StringFlag{Name: "affiliation", Aliases: []string{"a"}, Usage: "District or region the caller is scoped to"},
	},
	Action: func(c *cli.Context) error {
		// only the cookie settings are needed, so DATABASE_URL is not required here
		cfg, err := processEnv(c)
		if err != nil {
			return err
		}

		userType := types.UserType(c.String("type"))
		switch userType {
		case types.UserTypeDistrict, types.UserTypeREOC, types.UserTypeNational:
		default:
			return fmt.Errorf("unknown user type %q", userType)
		}

		codec, err := server.SessionCodec(cfg)
		if err != nil {
			return err
		}

		value, err := server.EncodeCaller(codec, cfg.CookieName, &types.Caller{
			Username:    c.String("username"),
			UserType:    userType,
			Affiliation: c.String("affiliation"),
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s=%s\n", cfg.CookieName, value)
		return nil
	},
}
