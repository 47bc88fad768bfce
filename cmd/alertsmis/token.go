package main

import (
	"context"
	"fmt"
	"time"

	"alertsmis/internal/db"
	"alertsmis/internal/notify"
	"alertsmis/internal/store"
	"alertsmis/internal/verification"

	"github.com/urfave/cli/v2"
)

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Issue (or reuse) a verification token and print the verification link",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:     "alert",
			Aliases:  []string{"a"},
			Usage:    "Alert ID",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "revoke",
			Usage: "Delete the alert's unused tokens instead of issuing one",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		alertID := c.Int64("alert")
		tokens := store.NewTokenRepository(pool, time.Duration(cfg.TokenTTLHours)*time.Hour, cfg.TokenEnforceExpiry)

		if c.Bool("revoke") {
			if err := tokens.Invalidate(ctx, alertID); err != nil {
				return err
			}
			fmt.Printf("revoked unused tokens for alert %d\n", alertID)
			return nil
		}

		logger := newLogger(cfg)
		svc := verification.New(
			logger,
			store.NewAlertRepository(pool),
			tokens,
			store.NewUserRepository(pool),
			notify.NewLogNotifier(logger),
			nil,
			verification.Options{BaseURL: cfg.BaseURL},
		)

		token, reused, err := svc.IssueToken(ctx, alertID)
		if err != nil {
			return err
		}

		state := "issued"
		if reused {
			state = "reused"
		}

		fmt.Printf("%s token for alert %d\n", state, alertID)
		fmt.Println(notify.VerifyURL(cfg.BaseURL, alertID, token.Token))
		return nil
	},
}
