// Package verification runs the alert verification workflow: it checks the
// one-time token, writes the verified fields, and on escalation issues a
// follow-up token and notifies the response teams.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"alertsmis/internal/metrics"
	"alertsmis/internal/notify"
	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type AlertStore interface {
	Alert(ctx context.Context, alertID int64) (*types.Alert, error)
	ApplyVerification(ctx context.Context, alertID int64, v *types.Verification) error
	ContactSummary(ctx context.Context, alertID int64) (*types.ContactSummary, error)
}

type TokenStore interface {
	Issue(ctx context.Context, alertID int64) (*types.VerificationToken, error)
	Acquire(ctx context.Context, alertID int64) (*types.VerificationToken, bool, error)
	ActiveToken(ctx context.Context, alertID int64) (*types.VerificationToken, error)
	ValidateAndConsume(ctx context.Context, alertID int64, token string) error
}

type Directory interface {
	EscalationRecipients(ctx context.Context, affiliations []string) ([]*types.Responder, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *types.Notification) error
}

type Options struct {
	BaseURL          string
	EscalationMarker string
	Affiliations     []string
	Transport        string
	Concurrency      int
	NotifyTimeout    time.Duration
}

type Service struct {
	logger    *logrus.Logger
	alerts    AlertStore
	tokens    TokenStore
	directory Directory
	notifier  Notifier
	metrics   *metrics.Metrics
	opts      Options

	wg sync.WaitGroup
}

// Result describes a successful submission. Token is set only when the
// submission escalated and a follow-up token was issued.
type Result struct {
	AlertID   int64  `json:"alert_id"`
	Escalated bool   `json:"escalated"`
	Token     string `json:"token,omitempty"`
	Notified  int    `json:"notified"`
	Redirect  string `json:"redirect"`
}

// AlertView is an alert together with whether it currently has an active token.
type AlertView struct {
	Alert          *types.Alert `json:"alert"`
	HasActiveToken bool         `json:"has_active_token"`
}

func New(
	logger *logrus.Logger,
	alerts AlertStore,
	tokens TokenStore,
	directory Directory,
	notifier Notifier,
	m *metrics.Metrics,
	opts Options,
) *Service {
	if opts.EscalationMarker == "" {
		opts.EscalationMarker = "EMS"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	if opts.Transport == "" {
		opts.Transport = "log"
	}

	return &Service{
		logger:    logger,
		alerts:    alerts,
		tokens:    tokens,
		directory: directory,
		notifier:  notifier,
		metrics:   m,
		opts:      opts,
	}
}

// Submit verifies an alert with a one-time token.
//
// The form is validated before the token is touched, so a rejected form
// leaves the token usable. Once the token is consumed the alert row is
// written; the two writes are not in one transaction. Escalation problems
// are logged and never fail the submission.
func (s *Service) Submit(ctx context.Context, alertID int64, token string, form *types.VerificationForm) (*Result, error) {
	log := s.logger.WithField("alert_id", alertID)

	if _, err := s.alerts.Alert(ctx, alertID); err != nil {
		s.recordFailure(err)
		return nil, err
	}

	v, err := Normalize(form)
	if err != nil {
		s.metrics.Verification(metrics.ResultInvalidForm)
		return nil, err
	}

	if err := s.tokens.ValidateAndConsume(ctx, alertID, token); err != nil {
		s.recordFailure(err)
		return nil, err
	}

	if err := s.alerts.ApplyVerification(ctx, alertID, v); err != nil {
		log.WithError(err).Error("token consumed but verification was not applied")
		s.recordFailure(err)
		return nil, err
	}

	s.metrics.Verification(metrics.ResultSuccess)
	log.WithField("verified_by", v.VerifiedBy).Info("alert verified")

	result := &Result{
		AlertID:  alertID,
		Redirect: RedirectPath(alertID, ""),
	}

	if strings.Contains(utils.PtrString(v.Actions), s.opts.EscalationMarker) {
		s.escalate(ctx, alertID, result)
	}

	return result, nil
}

func (s *Service) escalate(ctx context.Context, alertID int64, result *Result) {
	log := s.logger.WithField("alert_id", alertID)

	// Issue replaces anything handed out while the submission was in flight
	token, err := s.tokens.Issue(ctx, alertID)
	if err != nil {
		log.WithError(err).Error("failed to issue escalation token")
		return
	}
	s.metrics.TokenIssued(metrics.ReasonEscalation)

	result.Escalated = true
	result.Token = token.Token
	result.Redirect = RedirectPath(alertID, token.Token)

	contact, err := s.alerts.ContactSummary(ctx, alertID)
	if err != nil {
		log.WithError(err).Warn("failed to read contact summary for escalation")
	}

	recipients, err := s.directory.EscalationRecipients(ctx, s.opts.Affiliations)
	if err != nil {
		log.WithError(err).Error("failed to load escalation recipients")
		return
	}

	notes := make([]*types.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		notes = append(notes, notify.Compose(s.opts.BaseURL, alertID, contact, recipient, token.Token))
	}

	result.Notified = len(notes)
	log.WithField("recipients", len(notes)).Info("alert escalated")

	s.dispatch(ctx, notes)
}

// dispatch sends the notifications in the background. Sends are independent
// and unordered; a failure is logged for that recipient only.
func (s *Service) dispatch(ctx context.Context, notes []*types.Notification) {
	if len(notes) == 0 {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		var g errgroup.Group
		g.SetLimit(s.opts.Concurrency)

		for _, n := range notes {
			g.Go(func() error {
				if err := s.notifier.Notify(sendCtx, n); err != nil {
					s.logger.WithError(err).WithFields(logrus.Fields{
						"alert_id":  n.AlertID,
						"recipient": n.To,
						"transport": s.opts.Transport,
					}).Error("failed to send escalation notification")
					s.metrics.Notification(s.opts.Transport, metrics.ResultError)
					return nil
				}
				s.metrics.Notification(s.opts.Transport, metrics.ResultSuccess)
				return nil
			})
		}

		_ = g.Wait()
	}()
}

// Wait blocks until background notification sends have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// IssueToken hands out the alert's active token, or a fresh one when it has
// none. The bool reports whether an existing token was reused.
func (s *Service) IssueToken(ctx context.Context, alertID int64) (*types.VerificationToken, bool, error) {
	if _, err := s.alerts.Alert(ctx, alertID); err != nil {
		return nil, false, err
	}

	token, reused, err := s.tokens.Acquire(ctx, alertID)
	if err != nil {
		return nil, false, err
	}

	if !reused {
		s.metrics.TokenIssued(metrics.ReasonRequested)
		s.logger.WithField("alert_id", alertID).Info("verification token issued")
	}

	return token, reused, nil
}

func (s *Service) Alert(ctx context.Context, alertID int64) (*AlertView, error) {
	alert, err := s.alerts.Alert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	_, err = s.tokens.ActiveToken(ctx, alertID)
	if err != nil && !errors.Is(err, types.ErrTokenNotFound) {
		return nil, err
	}

	return &AlertView{Alert: alert, HasActiveToken: err == nil}, nil
}

// AlertByToken is Alert for holders of the alert's active token. Any other
// token, including a consumed one, gets ErrInvalidToken.
func (s *Service) AlertByToken(ctx context.Context, alertID int64, token string) (*AlertView, error) {
	alert, err := s.alerts.Alert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	active, err := s.tokens.ActiveToken(ctx, alertID)
	if err != nil {
		if errors.Is(err, types.ErrTokenNotFound) {
			return nil, types.ErrInvalidToken
		}
		return nil, err
	}

	if token == "" || subtle.ConstantTimeCompare([]byte(active.Token), []byte(token)) != 1 {
		return nil, types.ErrInvalidToken
	}

	return &AlertView{Alert: alert, HasActiveToken: true}, nil
}

func (s *Service) recordFailure(err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, types.ErrAlertNotFound):
		s.metrics.Verification(metrics.ResultNotFound)
	case errors.Is(err, types.ErrInvalidToken):
		s.metrics.Verification(metrics.ResultInvalidToken)
	case errors.As(err, &verr):
		s.metrics.Verification(metrics.ResultInvalidForm)
	default:
		s.metrics.Verification(metrics.ResultError)
	}
}

// RedirectPath is where a caller lands after submitting.
func RedirectPath(alertID int64, token string) string {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(alertID, 10))
	if token != "" {
		q.Set("token", token)
	}
	return "/alert_verification?" + q.Encode()
}
