// Package clock provides a manually driven clock for deterministic tests.
package clock

import (
	"sort"
	"sync"
	"time"

	clockport "github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
)

// ManualClock only moves when told to. Timers scheduled with AfterFunc fire synchronously,
// in deadline order, from Set or Advance once the clock reaches their deadline.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers map[uint64]*manualTimer
}

var _ clockport.Clock = (*ManualClock)(nil)

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, timers: map[uint64]*manualTimer{}}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
	c.fireDue()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	c.fireDue()
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) clockport.Timer {
	c.mu.Lock()
	c.seq++
	t := &manualTimer{clock: c, id: c.seq, deadline: c.now.Add(d), f: f}
	c.timers[t.id] = t
	c.mu.Unlock()

	if d <= 0 {
		c.fireDue()
	}
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fireDue runs due timers outside the lock so callbacks may schedule or stop timers.
func (c *ManualClock) fireDue() {
	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if !c.now.Before(t.deadline) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].deadline.Equal(due[j].deadline) {
				return due[i].id < due[j].id
			}
			return due[i].deadline.Before(due[j].deadline)
		})
		next := due[0]
		delete(c.timers, next.id)
		c.mu.Unlock()

		next.f()
	}
}

type manualTimer struct {
	clock    *ManualClock
	id       uint64
	deadline time.Time
	f        func()
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}
