package main

import (
	"context"
	"time"

	"alertsmis/internal/db"
	"alertsmis/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

type tokenState struct {
	Token     string
	Used      bool
	Expired   bool
	UsedAt    *time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
}

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Dump an alert and its token history",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:     "alert",
			Aliases:  []string{"a"},
			Usage:    "Alert ID",
			Required: true,
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

		alert, err := store.NewAlertRepository(pool).Alert(ctx, alertID)
		if err != nil {
			return err
		}

		tokens, err := store.NewTokenRepository(pool, 0, cfg.TokenEnforceExpiry).TokensByAlert(ctx, alertID)
		if err != nil {
			return err
		}

		now := time.Now()
		states := make([]tokenState, 0, len(tokens))
		for _, t := range tokens {
			states = append(states, tokenState{
				Token:     t.Token,
				Used:      t.Used,
				Expired:   t.Expired(now),
				UsedAt:    t.UsedAt,
				ExpiresAt: t.ExpiresAt,
				CreatedAt: t.CreatedAt,
			})
		}

		pp.Println(alert)
		pp.Println(states)
		return nil
	},
}
