// Package service holds outbound integrations used by the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/queue"
)

// defaultDialTimeout bounds connect and handshake when ctx has no deadline.
const defaultDialTimeout = 5 * time.Second

// Publisher sends domain events to RabbitMQ. Each publish dials its own
// connection; errors are logged and returned so callers may ignore them
// without interrupting the request.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher")}
}

// PublishHighscoreChanged publishes ev to the highscore.changed queue as a
// persistent JSON message. The whole exchange with the broker, handshake
// included, is bounded by ctx.
func (p *Publisher) PublishHighscoreChanged(ctx context.Context, ev queue.HighscoreChangedEvent) error {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event failed", zap.Error(err))
		return err
	}

	conn, err := p.dial(ctx)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()
	// Channel calls take no context; closing the connection unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.HighscoreQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn("queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.HighscoreQueueName, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.Error(err))
		return err
	}
	return nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if timeout = time.Until(dl); timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Dial:   amqp.DefaultDial(timeout),
		Locale: "en_US",
	})
}
