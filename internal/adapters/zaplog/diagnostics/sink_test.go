package diagnostics

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	diagport "github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
)

func TestSink_Report(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	s := NewSink(zap.New(core))

	err := s.Report(context.Background(), diagport.Report{
		SupportCode: "GGL-SRV-409-202603011200-00A1B2",
		Provider:    "google",
		Stage:       "SRV",
		Status:      409,
		Reason:      "Email already linked",
		AttemptID:   "attempt-1",
		OccurredAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Report() err=%v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["support_code"] != "GGL-SRV-409-202603011200-00A1B2" || fields["status"] != int64(409) {
		t.Fatalf("fields=%v", fields)
	}
	if entries[0].LoggerName != "diagnostics" {
		t.Fatalf("LoggerName=%q", entries[0].LoggerName)
	}
}
