package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alertsmis/pkg/types"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const DefaultQueue = "alerts.escalation"

// Publisher hands notifications to a durable RabbitMQ queue. A separate
// Consumer process performs the actual delivery.
type Publisher struct {
	url    string
	queue  string
	logger *logrus.Logger
}

func NewPublisher(url, queue string, logger *logrus.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{url: url, queue: queue, logger: logger}
}

func (p *Publisher) Notify(ctx context.Context, n *types.Notification) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"alert_id":  n.AlertID,
		"recipient": n.To,
		"queue":     p.queue,
	}).Debug("escalation notification queued")

	return nil
}

// Deliverer performs the final send of a queued notification.
type Deliverer interface {
	Notify(ctx context.Context, n *types.Notification) error
}

// Consumer drains the escalation queue. Failed deliveries are logged and
// dropped; nothing is requeued.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	deliver  Deliverer
	logger   *logrus.Logger
}

func NewConsumer(url, queue string, prefetch int, deliver Deliverer, logger *logrus.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if prefetch <= 0 {
		prefetch = 10
	}
	return &Consumer{url: url, queue: queue, prefetch: prefetch, deliver: deliver, logger: logger}
}

// Run keeps a connection open until ctx is cancelled, reconnecting with
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.WithError(err).WithField("retry_in", backoff.String()).Warn("failed to dial broker")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if err == nil {
			return nil
		}

		c.logger.WithError(err).Warn("consume loop ended, reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.logger.WithError(err).Warn("failed to set qos")
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", c.queue, err)
	}

	c.logger.WithField("queue", c.queue).Info("notification consumer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.logger.WithError(err).WithField("message_id", d.MessageId).Error("failed to deliver notification")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one queued notification and delivers it.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var n types.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("unmarshal notification: %w", err)
	}

	if n.To == "" {
		return fmt.Errorf("notification %s has no recipient", n.ID)
	}

	if err := c.deliver.Notify(ctx, &n); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"alert_id":  n.AlertID,
		"recipient": n.To,
	}).Info("escalation notification delivered")

	return nil
}
