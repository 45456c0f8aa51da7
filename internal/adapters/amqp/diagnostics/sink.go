// Package diagnostics publishes sign-in failure reports to a durable RabbitMQ queue so
// support tooling can look them up by support code.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	diagport "github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
)

const DefaultQueue = "kickoff.signin.failures"

type Sink struct {
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ diagport.Sink = (*Sink)(nil)

// Dial connects to url and declares the queue (idempotent, durable).
func Dial(url, queue string, l *zap.Logger) (*Sink, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	return &Sink{queue: queue, log: logger.OrNop(l), conn: conn, ch: ch}, nil
}

func encode(r diagport.Report) (amqp.Publishing, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    r.SupportCode,
		Timestamp:    r.OccurredAt.UTC(),
		Type:         "signin.failure",
		Body:         body,
	}, nil
}

func (s *Sink) Report(ctx context.Context, r diagport.Report) error {
	pub, err := encode(r)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return fmt.Errorf("rabbitmq: sink closed")
	}
	if err := s.ch.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		s.log.Warn("rabbitmq publish failed", zap.String("support_code", r.SupportCode), zap.Error(err))
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil
	}
	_ = s.ch.Close()
	err := s.conn.Close()
	s.ch, s.conn = nil, nil
	return err
}
