// Package reservations runs the reservation list with per-item cancel and ticket QR flows.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/platform/textsafe"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/reservationapi"
)

// DefaultBannerTimeout is how long a cancel-failure banner stays up unless dismissed.
const DefaultBannerTimeout = 3500 * time.Millisecond

var (
	ErrUnknownReservation = errors.New("reservations: unknown reservation")
	ErrCancelInProgress   = errors.New("reservations: cancel already in progress")
	ErrNotCancelable      = errors.New("reservations: reservation can no longer be cancelled")
)

type QRStatus string

const (
	QRIdle        QRStatus = "idle"
	QRLoading     QRStatus = "loading"
	QRReady       QRStatus = "ready"
	QRUnavailable QRStatus = "unavailable"
)

type QRState struct {
	Status  QRStatus
	DataURI string
}

// Item is a reservation card with its per-item UI flags.
type Item struct {
	Card      domain.ReservationCard
	Canceling bool
	// PendingCancel is set after the backend accepted a cancel and until the next list fetch.
	PendingCancel bool
	QR            QRState
}

// Cancelable reports whether the cancel action should be offered.
func (it Item) Cancelable() bool {
	return it.Card.Cancelable() && !it.Canceling && !it.PendingCancel
}

type State struct {
	Items []Item
	// Loading is a FetchAll in flight; Refreshing a pull-to-refresh or focus refresh.
	Loading    bool
	Refreshing bool
	Err        error
	// ShowRetry replaces the empty list after a failed fetch.
	ShowRetry bool
	Banner    string
}

type Client struct {
	api           reservationapi.API
	clock         clock.Clock
	log           *zap.Logger
	bannerTimeout time.Duration
	onChange      func(State)
	group         singleflight.Group

	mu          sync.Mutex
	items       []Item
	loading     int
	refreshing  int
	err         error
	banner      string
	bannerTimer clock.Timer
	bannerSeq   uint64
	// listSeq counts list requests sent; cancelSeq holds its value when each pending cancel landed.
	listSeq   uint64
	cancelSeq map[domain.ReservationID]uint64
}

type listing struct {
	cards []domain.ReservationCard
	seq   uint64
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

func WithBannerTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.bannerTimeout = d
		}
	}
}

// OnChange registers fn to receive a snapshot after every state change.
func OnChange(fn func(State)) Option {
	return func(c *Client) { c.onChange = fn }
}

func New(api reservationapi.API, clk clock.Clock, opts ...Option) *Client {
	c := &Client{
		api:           api,
		clock:         clk,
		log:           zap.NewNop(),
		bannerTimeout: DefaultBannerTimeout,
		cancelSeq:     map[domain.ReservationID]uint64{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchAll replaces the list. On failure a non-empty list stays as it was.
func (c *Client) FetchAll(ctx context.Context) error { return c.load(ctx, false) }

// Refresh is FetchAll behind the pull-to-refresh indicator.
func (c *Client) Refresh(ctx context.Context) error { return c.load(ctx, true) }

func (c *Client) load(ctx context.Context, refresh bool) error {
	c.update(func() {
		if refresh {
			c.refreshing++
		} else {
			c.loading++
		}
	})
	defer c.update(func() {
		if refresh {
			c.refreshing--
		} else {
			c.loading--
		}
	})

	// Concurrent fetches share one request; it is not tied to any single caller's context.
	ch := c.group.DoChan("list", func() (any, error) {
		c.mu.Lock()
		c.listSeq++
		seq := c.listSeq
		c.mu.Unlock()
		cards, err := c.api.ListReservations(context.WithoutCancel(ctx))
		return listing{cards: cards, seq: seq}, err
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}

	if res.Err != nil {
		c.log.Warn("reservations fetch failed", zap.Bool("refresh", refresh), zap.Error(res.Err))
		c.update(func() { c.err = res.Err })
		return res.Err
	}
	l := res.Val.(listing)
	c.update(func() { c.replaceLocked(l.cards, l.seq) })
	return nil
}

// replaceLocked installs the list returned by request seq. QR images already fetched and cancels
// still in flight carry over. A pending-cancel marker survives only if its cancel landed after
// request seq was sent, because that list cannot reflect it.
func (c *Client) replaceLocked(cards []domain.ReservationCard, seq uint64) {
	prev := make(map[domain.ReservationID]Item, len(c.items))
	for _, it := range c.items {
		prev[it.Card.ID] = it
	}
	items := make([]Item, 0, len(cards))
	pending := map[domain.ReservationID]uint64{}
	for _, card := range cards {
		it := Item{Card: card}
		if old, ok := prev[card.ID]; ok {
			it.Canceling = old.Canceling
			it.QR = old.QR
			if old.PendingCancel && c.cancelSeq[card.ID] >= seq {
				it.PendingCancel = true
			}
			if it.Card.QRCodeDataURI == "" && old.QR.Status == QRReady {
				it.Card.QRCodeDataURI = old.QR.DataURI
			}
		}
		if it.PendingCancel {
			pending[card.ID] = c.cancelSeq[card.ID]
		}
		items = append(items, it)
	}
	c.items = items
	c.cancelSeq = pending
	c.err = nil
}

// Cancel asks the backend to cancel id. Only id's flags change while it runs; on failure a
// banner with the backend's reason is shown and hides itself after the banner timeout.
func (c *Client) Cancel(ctx context.Context, id domain.ReservationID) error {
	var pre error
	c.update(func() {
		it := c.findLocked(id)
		switch {
		case it == nil:
			pre = fmt.Errorf("%w: %s", ErrUnknownReservation, id)
		case it.Canceling:
			pre = ErrCancelInProgress
		case !it.Cancelable():
			pre = ErrNotCancelable
		default:
			it.Canceling = true
		}
	})
	if pre != nil {
		return pre
	}

	err := c.api.CancelReservation(ctx, id)
	c.update(func() {
		if it := c.findLocked(id); it != nil {
			it.Canceling = false
			if err == nil {
				it.PendingCancel = true
				c.cancelSeq[id] = c.listSeq
			}
		}
		if err != nil {
			c.showBannerLocked(cancelFailureMessage(err))
		}
	})
	if err != nil {
		c.log.Warn("reservation cancel failed",
			zap.String("reservation_id", string(id)),
			zap.Int("status", apierr.StatusOf(err)),
			zap.Error(err),
		)
		return err
	}
	c.log.Info("reservation cancelled", zap.String("reservation_id", string(id)))
	return nil
}

func cancelFailureMessage(err error) string {
	if r := textsafe.Clean(apierr.ReasonOf(err), 0); r != "" {
		return r
	}
	if apierr.IsTransport(err) {
		return "Couldn't reach Kickoff. Check your connection and try again."
	}
	return "Couldn't cancel this reservation. Please try again."
}

// FetchQRCode loads the ticket QR for id. Opening the same ticket twice shares one request.
func (c *Client) FetchQRCode(ctx context.Context, id domain.ReservationID) QRState {
	c.update(func() {
		if it := c.findLocked(id); it != nil {
			it.QR = QRState{Status: QRLoading}
		}
	})

	ch := c.group.DoChan("qr:"+string(id), func() (any, error) {
		return c.api.ReservationQRCode(context.WithoutCancel(ctx), id)
	})

	var st QRState
	select {
	case res := <-ch:
		switch {
		case res.Err != nil:
			c.log.Warn("qr fetch failed", zap.String("reservation_id", string(id)), zap.Error(res.Err))
			st = QRState{Status: QRUnavailable}
		case !ValidQRDataURI(res.Val.(string)):
			c.log.Warn("qr payload rejected", zap.String("reservation_id", string(id)))
			st = QRState{Status: QRUnavailable}
		default:
			st = QRState{Status: QRReady, DataURI: strings.TrimSpace(res.Val.(string))}
		}
	case <-ctx.Done():
		st = QRState{Status: QRIdle}
	}

	c.update(func() {
		if it := c.findLocked(id); it != nil {
			it.QR = st
			if st.Status == QRReady {
				it.Card.QRCodeDataURI = st.DataURI
			}
		}
	})
	return st
}

// DismissBanner hides the banner before its timeout.
func (c *Client) DismissBanner() {
	c.update(func() { c.clearBannerLocked() })
}

func (c *Client) showBannerLocked(msg string) {
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
	}
	c.banner = msg
	c.bannerSeq++
	seq := c.bannerSeq
	c.bannerTimer = c.clock.AfterFunc(c.bannerTimeout, func() {
		c.update(func() {
			if seq == c.bannerSeq {
				c.clearBannerLocked()
			}
		})
	})
}

func (c *Client) clearBannerLocked() {
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
		c.bannerTimer = nil
	}
	c.bannerSeq++
	c.banner = ""
}

// Cancelable reports whether the cancel action should be offered for id.
func (c *Client) Cancelable(id domain.ReservationID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.findLocked(id)
	return it != nil && it.Cancelable()
}

func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the banner timer.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
		c.bannerTimer = nil
	}
}

func (c *Client) findLocked(id domain.ReservationID) *Item {
	for i := range c.items {
		if c.items[i].Card.ID == id {
			return &c.items[i]
		}
	}
	return nil
}

func (c *Client) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Client) snapshotLocked() State {
	return State{
		Items:      append([]Item(nil), c.items...),
		Loading:    c.loading > 0,
		Refreshing: c.refreshing > 0,
		Err:        c.err,
		ShowRetry:  c.err != nil && len(c.items) == 0,
		Banner:     c.banner,
	}
}
