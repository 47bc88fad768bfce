package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alertsmis/pkg/types"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/sirupsen/logrus"
)

type MailerConfig struct {
	Host     string
	Port     uint
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Mailer sends plain-text email through shoutrrr's smtp service, one
// sender per recipient.
type Mailer struct {
	config MailerConfig
	logger *logrus.Logger
}

func NewMailer(config MailerConfig, logger *logrus.Logger) (*Mailer, error) {
	if strings.TrimSpace(config.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(config.From) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	if config.Port == 0 {
		config.Port = 587
	}

	return &Mailer{config: config, logger: logger}, nil
}

func (m *Mailer) serviceURL(to, subject string) string {
	u := url.URL{
		Scheme: "smtp",
		Host:   net.JoinHostPort(m.config.Host, strconv.FormatUint(uint64(m.config.Port), 10)),
		Path:   "/",
	}
	if m.config.Username != "" {
		u.User = url.UserPassword(m.config.Username, m.config.Password)
	}

	q := url.Values{}
	q.Set("fromaddress", m.config.From)
	q.Set("toaddresses", to)
	q.Set("subject", subject)
	q.Set("usehtml", "no")
	u.RawQuery = q.Encode()

	return u.String()
}

func (m *Mailer) Notify(ctx context.Context, n *types.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.TrimSpace(n.To) == "" {
		return fmt.Errorf("notification %s has no recipient", n.ID)
	}

	sender, err := shoutrrr.CreateSender(m.serviceURL(n.To, n.Subject))
	if err != nil {
		return fmt.Errorf("create smtp sender: %w", err)
	}
	if m.config.Timeout > 0 {
		sender.Timeout = m.config.Timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	errs := sender.Send(n.Body, &stypes.Params{"subject": n.Subject})
	for _, e := range errs {
		if e != nil {
			return fmt.Errorf("send mail to %s: %w", n.To, e)
		}
	}

	m.logger.WithFields(logrus.Fields{
		"alert_id":  n.AlertID,
		"recipient": n.To,
	}).Debug("escalation email sent")

	return nil
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n *types.Notification) error {
	l.logger.WithFields(logrus.Fields{
		"alert_id":  n.AlertID,
		"recipient": n.To,
		"subject":   n.Subject,
		"verify":    n.VerifyURL,
	}).Info("escalation notification")
	return nil
}
