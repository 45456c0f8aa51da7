package diagnostics

import (
	"context"
	"time"
)

// Report is a support-coded sign-in failure. It is a debugging aid only.
type Report struct {
	SupportCode string    `json:"supportCode"`
	Provider    string    `json:"provider"`
	Stage       string    `json:"stage"`
	Status      int       `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	AttemptID   string    `json:"attemptId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Sink receives failure reports so support agents can look up a support code.
type Sink interface {
	Report(ctx context.Context, r Report) error
}
