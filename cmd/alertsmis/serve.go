package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alertsmis/internal/db"
	"alertsmis/internal/metrics"
	"alertsmis/internal/server"
	"alertsmis/internal/store"
	"alertsmis/internal/verification"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	alertRepo := store.NewAlertRepository(pool)
	tokenRepo := store.NewTokenRepository(pool, time.Duration(config.TokenTTLHours)*time.Hour, config.TokenEnforceExpiry)
	userRepo := store.NewUserRepository(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(config, logger)
	if err != nil {
		return err
	}

	svc := verification.New(logger, alertRepo, tokenRepo, userRepo, notifier, m, verification.Options{
		BaseURL:          config.BaseURL,
		EscalationMarker: config.EscalationMarker,
		Affiliations:     config.EscalationAffiliations,
		Transport:        config.NotifyTransport,
		Concurrency:      config.NotifyConcurrency,
		NotifyTimeout:    time.Duration(config.NotifyTimeoutSec) * time.Second,
	})

	srv, err := server.New(config, logger, svc, alertRepo, registry)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Stop(shutdownCtx)

	// let in-flight escalation notifications finish before the pool closes
	svc.Wait()

	return err
}
