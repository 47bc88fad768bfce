package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alertsmis/internal/verification"
	"alertsmis/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Verifier is the verification workflow the handlers drive.
type Verifier interface {
	Submit(ctx context.Context, alertID int64, token string, form *types.VerificationForm) (*verification.Result, error)
	IssueToken(ctx context.Context, alertID int64) (*types.VerificationToken, bool, error)
	Alert(ctx context.Context, alertID int64) (*verification.AlertView, error)
	AlertByToken(ctx context.Context, alertID int64, token string) (*verification.AlertView, error)
}

// AlertLog is the call log behind the listing and intake endpoints.
type AlertLog interface {
	Create(ctx context.Context, alert *types.Alert) error
	List(ctx context.Context, filter *types.AlertFilter, caller *types.Caller, pageSize uint64) (*types.AlertPage, error)
	Counts(ctx context.Context, now time.Time) (*types.AlertCounts, error)
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	verifier Verifier
	alerts   AlertLog
	gatherer prometheus.Gatherer

	cookie *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	verifier Verifier,
	alerts AlertLog,
	gatherer prometheus.Gatherer,
) (*Service, error) {
	mux := flow.New()

	cookie, err := SessionCodec(config)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:   logger,
		config:   config,
		verifier: verifier,
		alerts:   alerts,
		gatherer: gatherer,
		cookie:   cookie,
	}

	s.buildRouter(mux)

	// flow only runs middleware on matched routes, so the slash redirect wraps the mux
	s.handler = s.StripTrailingSlash(mux)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler without a listener.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.LoadCaller)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), http.MethodGet)
	}

	// Open to token holders: the query string token authorizes the read and
	// the submission. A signed-in caller may read without one.
	r.HandleFunc("/alert_verification", s.handleGetAlertVerification, http.MethodGet)
	r.HandleFunc("/alert_verification", s.handlePostAlertVerification, http.MethodPost)

	r.HandleFunc("/alerts/counts", s.handleAlertCounts, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireCaller)

		r.HandleFunc("/generate_token", s.handleGenerateToken, http.MethodPost)
		r.HandleFunc("/alerts", s.handleListAlerts, http.MethodGet)
		r.HandleFunc("/alerts", s.handleCreateAlert, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
