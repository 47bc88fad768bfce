package main

import (
	"fmt"
	"time"

	"alertsmis/internal/notify"
	"alertsmis/internal/verification"
	"alertsmis/pkg/types"

	"github.com/sirupsen/logrus"
)

func newMailer(cfg *types.Config, logger *logrus.Logger) (*notify.Mailer, error) {
	return notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Timeout:  time.Duration(cfg.NotifyTimeoutSec) * time.Second,
	}, logger)
}

// buildNotifier picks the escalation transport named by NOTIFY_TRANSPORT.
func buildNotifier(cfg *types.Config, logger *logrus.Logger) (verification.Notifier, error) {
	switch cfg.NotifyTransport {
	case "", "log":
		return notify.NewLogNotifier(logger), nil
	case "smtp":
		mailer, err := newMailer(cfg, logger)
		if err != nil {
			return nil, err
		}
		return mailer, nil
	case "amqp":
		return notify.NewPublisher(cfg.AMQPURL, cfg.AMQPQueue, logger), nil
	default:
		return nil, fmt.Errorf("unknown notify transport %q", cfg.NotifyTransport)
	}
}
