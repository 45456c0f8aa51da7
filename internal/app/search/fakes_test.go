package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/searchapi"
)

// gatedSearcher hands every request to the test, which decides when and how it completes.
type gatedSearcher struct {
	calls chan *pendingCall
}

type pendingCall struct {
	ctx   context.Context
	req   searchapi.Request
	reply chan reply
}

type reply struct {
	resp searchapi.Response
	err  error
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan *pendingCall, 16)}
}

func (g *gatedSearcher) Search(ctx context.Context, req searchapi.Request) (searchapi.Response, error) {
	pc := &pendingCall{ctx: ctx, req: req, reply: make(chan reply, 1)}
	g.calls <- pc
	select {
	case r := <-pc.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return searchapi.Response{}, ctx.Err()
	}
}

func (g *gatedSearcher) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case pc := <-g.calls:
		return pc
	case <-time.After(2 * time.Second):
		t.Fatal("no search request was issued")
		return nil
	}
}

func (g *gatedSearcher) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case pc := <-g.calls:
		t.Fatalf("unexpected search request %+v", pc.req)
	default:
	}
}

func (pc *pendingCall) respond(resp searchapi.Response, err error) {
	pc.reply <- reply{resp: resp, err: err}
}

// scriptedSearcher answers synchronously and records every request.
type scriptedSearcher struct {
	mu      sync.Mutex
	reqs    []searchapi.Request
	respond func(req searchapi.Request) (searchapi.Response, error)
}

func (s *scriptedSearcher) Search(ctx context.Context, req searchapi.Request) (searchapi.Response, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	fn := s.respond
	s.mu.Unlock()
	if fn == nil {
		return searchapi.Response{}, nil
	}
	return fn(req)
}

func (s *scriptedSearcher) requests() []searchapi.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]searchapi.Request(nil), s.reqs...)
}

func matches(prefix string, from, n int) []domain.MatchSummary {
	out := make([]domain.MatchSummary, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, domain.MatchSummary{ID: domain.MatchID(fmt.Sprintf("%s-%02d", prefix, i)), Title: fmt.Sprintf("Match %d", i)})
	}
	return out
}

func venues(prefix string, from, n int) []domain.VenueSummary {
	out := make([]domain.VenueSummary, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, domain.VenueSummary{ID: domain.VenueID(fmt.Sprintf("%s-%02d", prefix, i)), Name: fmt.Sprintf("Venue %d", i)})
	}
	return out
}

func matchIDs(ms []domain.MatchSummary) []domain.MatchID {
	out := make([]domain.MatchID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}
