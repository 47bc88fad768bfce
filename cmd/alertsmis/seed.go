package main

import (
	"context"
	"fmt"

	"alertsmis/internal/db"
	"alertsmis/internal/seed"
	"alertsmis/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the responder directory and a demo alert",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "demo-alert",
			Usage: "Also log a demo alert",
			Value: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		n, err := seed.SeedResponders(ctx, store.NewUserRepository(pool))
		if err != nil {
			return err
		}
		logrus.WithField("count", n).Info("responders seeded")

		if c.Bool("demo-alert") {
			alert, err := seed.SeedDemoAlert(ctx, store.NewAlertRepository(pool))
			if err != nil {
				return err
			}
			logrus.WithField("alert_id", alert.ID).Info("demo alert logged")
		}

		return nil
	},
}
