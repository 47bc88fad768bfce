package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"alertsmis/internal/notify"

	"github.com/urfave/cli/v2"
)

var notifyWorkerCommand = &cli.Command{
	Name:  "notify-worker",
	Usage: "Deliver queued escalation notifications by email",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "prefetch",
			Usage: "Unacknowledged messages held at once",
			Value: 10,
		},
	},
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := processEnv(c)
		if err != nil {
			return err
		}

		logger := newLogger(cfg)

		mailer, err := newMailer(cfg, logger)
		if err != nil {
			return err
		}

		consumer := notify.NewConsumer(cfg.AMQPURL, cfg.AMQPQueue, c.Int("prefetch"), mailer, logger)
		return consumer.Run(ctx)
	},
}
