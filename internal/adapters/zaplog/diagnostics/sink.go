// Package diagnostics writes sign-in failure reports to the process log.
package diagnostics

import (
	"context"

	"go.uber.org/zap"

	diagport "github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
)

type Sink struct {
	log *zap.Logger
}

var _ diagport.Sink = (*Sink)(nil)

func NewSink(l *zap.Logger) *Sink {
	return &Sink{log: logger.OrNop(l).Named("diagnostics")}
}

func (s *Sink) Report(_ context.Context, r diagport.Report) error {
	s.log.Info("sign-in failure report",
		zap.String("support_code", r.SupportCode),
		zap.String("provider", r.Provider),
		zap.String("stage", r.Stage),
		zap.Int("status", r.Status),
		zap.String("reason", r.Reason),
		zap.String("attempt_id", r.AttemptID),
		zap.Time("occurred_at", r.OccurredAt),
	)
	return nil
}
