package main

import (
	"testing"

	"alertsmis/internal/notify"
	"alertsmis/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotifier(t *testing.T) {
	logger := logrus.New()

	n, err := buildNotifier(&types.Config{NotifyTransport: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)

	n, err = buildNotifier(&types.Config{NotifyTransport: "amqp", AMQPURL: "amqp://localhost"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.Publisher{}, n)

	n, err = buildNotifier(&types.Config{NotifyTransport: "smtp", SMTPHost: "smtp.example.org", MailFrom: "a@example.org"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.Mailer{}, n)

	_, err = buildNotifier(&types.Config{NotifyTransport: "smtp"}, logger)
	require.Error(t, err)

	_, err = buildNotifier(&types.Config{NotifyTransport: "pigeon"}, logger)
	require.Error(t, err)
}

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, newLogger(&types.Config{LogLevel: "debug"}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger(&types.Config{LogLevel: "loud"}).GetLevel())
}
