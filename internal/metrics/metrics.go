// Package metrics holds the Prometheus counters for verification, token and
// notification activity.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels
const (
	ResultSuccess      = "success"
	ResultNotFound     = "not_found"
	ResultInvalidToken = "invalid_token"
	ResultInvalidForm  = "invalid_form"
	ResultError        = "error"
)

// Token issue reasons
const (
	ReasonRequested  = "requested"
	ReasonEscalation = "escalation"
)

type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	TokensIssuedTotal  *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// New creates the counters and registers them with the given registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_verifications_total",
				Help: "Verification submissions by result",
			},
			[]string{"result"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_tokens_issued_total",
				Help: "Verification tokens newly issued by reason",
			},
			[]string{"reason"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_notifications_total",
				Help: "Escalation notification attempts by transport and result",
			},
			[]string{"transport", "result"},
		),
	}

	for _, c := range []prometheus.Collector{m.VerificationsTotal, m.TokensIssuedTotal, m.NotificationsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// The recorders below are nil-safe so components can run without metrics.

func (m *Metrics) Verification(result string) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) TokenIssued(reason string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) Notification(transport, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(transport, result).Inc()
}
