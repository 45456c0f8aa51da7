// Package search turns keystrokes and facet selections into a debounced, paginated stream of
// catalog searches.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/searchapi"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultPageSize = 15
	// ScrollThreshold is the distance from the bottom, in logical pixels, that triggers LoadMore.
	ScrollThreshold = 100.0
	// DateWindowDays is how many days, starting today, the date filter offers.
	DateWindowDays = 7
)

var (
	ErrInvalidTab         = errors.New("search: invalid tab")
	ErrInvalidVenueFilter = errors.New("search: invalid venue filter")
	ErrDateOutOfRange     = errors.New("search: date outside the selectable window")
)

// fetch is one in-flight request. It is applied only while it is still the current fetch of
// its kind and the criteria it was issued for have not changed.
type fetch struct {
	gen       uint64
	page      int
	appending bool
	tab       domain.Tab
	cancel    context.CancelFunc
}

type Coordinator struct {
	api      searchapi.Searcher
	clock    clock.Clock
	log      *zap.Logger
	debounce time.Duration
	pageSize int
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	st       State
	gen      uint64
	fresh    *fetch
	more     *fetch
	timer    clock.Timer
	timerSeq uint64
	closed   bool
}

type Option func(*Coordinator)

func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.debounce = d
		}
	}
}

func WithPageSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = logger.OrNop(l) }
}

// OnChange registers fn to receive a snapshot after every state change. It may be called from
// any goroutine and must not call back into the coordinator synchronously.
func OnChange(fn func(State)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

func New(api searchapi.Searcher, clk clock.Clock, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		api:      api,
		clock:    clk,
		log:      zap.NewNop(),
		debounce: DefaultDebounce,
		pageSize: DefaultPageSize,
		ctx:      ctx,
		cancel:   cancel,
		st: State{
			ActiveTab:      domain.TabAll,
			VenueFilter:    domain.VenueFilterNearby,
			MatchPage:      1,
			VenuePage:      1,
			HasMoreMatches: true,
			HasMoreVenues:  true,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start issues the initial browse fetch for the empty query.
func (c *Coordinator) Start() {
	c.update(func() {
		c.resetLocked()
		c.dispatchLocked(1, false)
	})
}

// SetQuery records the raw text and (re)arms the debounce timer. Only the text present when
// the timer fires is searched.
func (c *Coordinator) SetQuery(text string) {
	c.update(func() {
		c.st.RawQuery = text
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timerSeq++
		seq := c.timerSeq
		c.timer = c.clock.AfterFunc(c.debounce, func() { c.settle(seq) })
	})
}

func (c *Coordinator) settle(seq uint64) {
	c.update(func() {
		if seq != c.timerSeq {
			return
		}
		c.timer = nil
		if c.st.RawQuery == c.st.DebouncedQuery {
			return
		}
		c.st.DebouncedQuery = c.st.RawQuery
		c.resetLocked()
		c.dispatchLocked(1, false)
	})
}

func (c *Coordinator) SetActiveTab(tab domain.Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTab, tab)
	}
	c.update(func() {
		if tab == c.st.ActiveTab {
			return
		}
		c.st.ActiveTab = tab
		c.resetLocked()
		c.dispatchLocked(1, false)
	})
	return nil
}

// SetDateFilter selects a day from DateOptions, or clears the filter when d is nil.
func (c *Coordinator) SetDateFilter(d *domain.Date) error {
	if d != nil && !c.inWindow(*d) {
		return fmt.Errorf("%w: %s", ErrDateOutOfRange, d)
	}
	c.update(func() {
		if sameDate(c.st.DateFilter, d) {
			return
		}
		if d == nil {
			c.st.DateFilter = nil
		} else {
			day := *d
			c.st.DateFilter = &day
		}
		c.resetLocked()
		c.dispatchLocked(1, false)
	})
	return nil
}

// SetVenueFilter only changes presentation; it never triggers a fetch.
func (c *Coordinator) SetVenueFilter(f domain.VenueFilter) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVenueFilter, f)
	}
	c.update(func() { c.st.VenueFilter = f })
	return nil
}

// DateOptions returns the selectable days, starting today.
func (c *Coordinator) DateOptions() []domain.Date {
	return domain.UpcomingDates(c.clock.Now(), DateWindowDays)
}

func (c *Coordinator) inWindow(d domain.Date) bool {
	for _, o := range c.DateOptions() {
		if o == d {
			return true
		}
	}
	return false
}

// FetchPage requests one page for the current criteria. A fresh fetch (appendPage=false) replaces
// the results and supersedes every fetch in flight.
func (c *Coordinator) FetchPage(page int, appendPage bool) {
	if page < 1 {
		page = 1
	}
	c.update(func() { c.dispatchLocked(page, appendPage) })
}

// Retry re-issues the first page for the current criteria.
func (c *Coordinator) Retry() { c.FetchPage(1, false) }

// LoadMore fetches the next page of the active tab. It reports whether a fetch was started:
// nothing happens while any fetch is in flight, when the tab has no more pages, on the all
// tab (which only previews), or before page 1 has been shown. After a failed first page only
// Retry recovers.
func (c *Coordinator) LoadMore() bool {
	var started bool
	c.update(func() {
		if c.fresh != nil || c.more != nil || c.st.ShowRetry {
			return
		}
		var page *int
		switch c.st.ActiveTab {
		case domain.TabMatches:
			if !c.st.HasMoreMatches || len(c.st.Matches) == 0 {
				return
			}
			page = &c.st.MatchPage
		case domain.TabVenues:
			if !c.st.HasMoreVenues || len(c.st.Venues) == 0 {
				return
			}
			page = &c.st.VenuePage
		default:
			return
		}
		*page++
		started = c.dispatchLocked(*page, true)
	})
	return started
}

// OnScroll is the scroll-proximity trigger. offset is the scroll position, viewport the
// visible height and content the full content height.
func (c *Coordinator) OnScroll(offset, viewport, content float64) bool {
	if content-(offset+viewport) > ScrollThreshold {
		return false
	}
	return c.LoadMore()
}

func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Preview is the all-tab inline view of the current results.
func (c *Coordinator) Preview() Preview {
	return previewOf(c.Snapshot())
}

// Wait blocks until every fetch dispatched so far has finished and been applied.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Close stops the debounce timer, cancels in-flight fetches and waits for them to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// update runs fn under the lock and notifies the observer afterwards.
func (c *Coordinator) update(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Coordinator) snapshotLocked() State {
	s := c.st.clone()
	s.Loading = c.fresh != nil
	s.LoadingMore = c.more != nil
	return s
}

// resetLocked starts a new criteria generation: pagination restarts, results clear and every
// fetch issued for the old criteria is cancelled.
func (c *Coordinator) resetLocked() {
	c.gen++
	c.cancelLocked(&c.fresh)
	c.cancelLocked(&c.more)
	c.st.Matches = nil
	c.st.Venues = nil
	c.st.MatchPage = 1
	c.st.VenuePage = 1
	c.st.HasMoreMatches = true
	c.st.HasMoreVenues = true
	c.st.Err = nil
	c.st.ShowRetry = false
}

func (c *Coordinator) cancelLocked(slot **fetch) {
	if *slot != nil {
		(*slot).cancel()
		*slot = nil
	}
}

func (c *Coordinator) dispatchLocked(page int, appendPage bool) bool {
	if appendPage && c.more != nil {
		return false
	}
	if !appendPage {
		c.cancelLocked(&c.fresh)
		c.cancelLocked(&c.more)
	}

	ctx, cancel := context.WithCancel(c.ctx)
	f := &fetch{gen: c.gen, page: page, appending: appendPage, tab: c.st.ActiveTab, cancel: cancel}
	if appendPage {
		c.more = f
	} else {
		c.fresh = f
	}
	c.st.Err = nil

	req := searchapi.Request{
		Query:    c.st.DebouncedQuery,
		Tab:      c.st.ActiveTab,
		Page:     page,
		PageSize: c.pageSize,
	}
	if c.st.ActiveTab == domain.TabMatches && c.st.DateFilter != nil {
		d := *c.st.DateFilter
		req.Date = &d
	}

	c.log.Debug("search dispatched",
		zap.String("query", req.Query),
		zap.String("tab", string(req.Tab)),
		zap.Int("page", page),
		zap.Bool("append", appendPage),
	)

	c.wg.Add(1)
	go c.run(ctx, f, req)
	return true
}

func (c *Coordinator) run(ctx context.Context, f *fetch, req searchapi.Request) {
	defer c.wg.Done()
	defer f.cancel()

	resp, err := c.api.Search(ctx, req)
	c.update(func() { c.applyLocked(f, resp, err) })
}

func (c *Coordinator) applyLocked(f *fetch, resp searchapi.Response, err error) {
	current := f.gen == c.gen && (f == c.fresh || f == c.more)
	if !current {
		c.log.Debug("stale search response discarded", zap.Int("page", f.page), zap.Bool("append", f.appending))
		return
	}
	if f.appending {
		c.more = nil
	} else {
		c.fresh = nil
	}

	if err != nil {
		c.log.Warn("search failed", zap.Int("page", f.page), zap.Bool("append", f.appending), zap.Error(err))
		c.st.Err = err
		switch {
		case f.appending:
			// Let the next LoadMore ask for the same page again.
			c.restorePageLocked(f)
		case f.page == 1:
			// Results still on screen stay there; the inline error is enough.
			c.st.ShowRetry = c.emptyLocked(f.tab)
		}
		return
	}

	c.st.Err = nil
	c.st.ShowRetry = false
	if f.tab.CoversMatches() {
		if f.appending {
			c.st.Matches = append(c.st.Matches, resp.Matches...)
		} else {
			c.st.Matches = append([]domain.MatchSummary(nil), resp.Matches...)
			c.st.MatchPage = f.page
		}
		c.st.HasMoreMatches = resp.HasMoreMatches
	}
	if f.tab.CoversVenues() {
		if f.appending {
			c.st.Venues = append(c.st.Venues, resp.Venues...)
		} else {
			c.st.Venues = append([]domain.VenueSummary(nil), resp.Venues...)
			c.st.VenuePage = f.page
		}
		c.st.HasMoreVenues = resp.HasMoreVenues
	}
}

// emptyLocked reports whether every facet tab covers has nothing to show.
func (c *Coordinator) emptyLocked(tab domain.Tab) bool {
	if tab.CoversMatches() && len(c.st.Matches) > 0 {
		return false
	}
	if tab.CoversVenues() && len(c.st.Venues) > 0 {
		return false
	}
	return true
}

func (c *Coordinator) restorePageLocked(f *fetch) {
	switch f.tab {
	case domain.TabMatches:
		if c.st.MatchPage == f.page {
			c.st.MatchPage = f.page - 1
		}
	case domain.TabVenues:
		if c.st.VenuePage == f.page {
			c.st.VenuePage = f.page - 1
		}
	}
}

func sameDate(a, b *domain.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
