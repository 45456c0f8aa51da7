// Package diagnostics publishes sign-in failure reports on NATS subjects
// "<prefix>.<provider>.<stage>".
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	diagport "github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
)

const DefaultSubjectPrefix = "kickoff.diagnostics.signin"

type Sink struct {
	nc     *nats.Conn
	prefix string
}

var _ diagport.Sink = (*Sink)(nil)

func Connect(url, prefix string, l *zap.Logger) (*Sink, error) {
	log := logger.OrNop(l)
	opts := []nats.Option{
		nats.Name("kickoff-diagnostics"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	return NewWithConn(nc, prefix), nil
}

func NewWithConn(nc *nats.Conn, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Sink{nc: nc, prefix: prefix}
}

// Subject returns the subject a report is published on.
func (s *Sink) Subject(r diagport.Report) string {
	return s.prefix + "." + token(r.Provider) + "." + token(r.Stage)
}

func token(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, s)
}

func (s *Sink) Report(ctx context.Context, r diagport.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("nats: marshal report: %w", err)
	}
	msg := nats.NewMsg(s.Subject(r))
	msg.Header.Set("Kickoff-Support-Code", r.SupportCode)
	msg.Data = body
	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats: publish: %w", err)
	}
	return nil
}

// Close flushes pending reports and closes the connection.
func (s *Sink) Close() error {
	return s.nc.Drain()
}
