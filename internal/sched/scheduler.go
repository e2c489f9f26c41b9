// Package sched provides the cancellable delayed-task primitive behind the
// simulated reply, call-connect and payment-settlement delays. Every pending
// task is keyed; cancelling a key that already fired (or never existed) is a
// no-op, and re-scheduling a key replaces the pending task.
package sched

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Key builds a scheduler key from a scope (conversation or transaction ID)
// and a task kind, so all tasks of one scope can be revoked together.
func Key(scope, kind string) string {
	return scope + "/" + kind
}

type Scheduler struct {
	clk     clock.Clock
	mu      sync.Mutex
	pending map[string]*entry
}

type entry struct {
	timer *clock.Timer
}

func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clk:     clk,
		pending: make(map[string]*entry),
	}
}

func (s *Scheduler) Clock() clock.Clock {
	return s.clk
}

// Schedule fires fn once after delay. A pending task under the same key is
// replaced. fn runs without scheduler locks held.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.pending[key]; ok {
		old.timer.Stop()
		delete(s.pending, key)
	}
	e := &entry{}
	e.timer = s.clk.AfterFunc(delay, func() {
		if s.claim(key, e) {
			fn()
		}
	})
	s.pending[key] = e
}

// claim removes the entry if it is still the current one for key. A false
// return means the task was cancelled or replaced before firing.
func (s *Scheduler) claim(key string, e *entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.pending[key]
	if !ok || cur != e {
		return false
	}
	delete(s.pending, key)
	return true
}

// Cancel revokes the pending task under key. Safe to call after the task
// fired or was never scheduled.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[key]; ok {
		e.timer.Stop()
		delete(s.pending, key)
	}
}

// CancelScope revokes every pending task whose key belongs to scope.
func (s *Scheduler) CancelScope(scope string) {
	prefix := scope + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.pending {
		if strings.HasPrefix(key, prefix) {
			e.timer.Stop()
			delete(s.pending, key)
		}
	}
}

func (s *Scheduler) HasPending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
