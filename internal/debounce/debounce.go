// Package debounce delays work until input settles and hands each run a token
// so callers can discard results that a newer input has superseded.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the quiet period before a scheduled query runs.
const DefaultWindow = 300 * time.Millisecond

// Token identifies one scheduled request. Tokens increase monotonically; only
// the most recently issued token is current.
type Token uint64

// Func performs the debounced work for query. Implementations should call
// Scheduler.Current(token) before applying results.
type Func func(ctx context.Context, query string, token Token)

// Scheduler coalesces rapid Schedule calls into a single run of fn carrying
// the latest query.
type Scheduler struct {
	window time.Duration
	fn     Func

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	token    Token
	stopped  bool
	inflight sync.WaitGroup
}

// New returns a Scheduler that runs fn once input has been quiet for window.
// A non-positive window selects DefaultWindow.
func New(window time.Duration, fn Func) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		window: window,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Window returns the debounce window.
func (s *Scheduler) Window() time.Duration {
	return s.window
}

// Schedule issues a new token and restarts the timer. The pending run, if
// any, is replaced by one for query. After Cancel it returns the current
// token and schedules nothing.
func (s *Scheduler) Schedule(query string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return s.token
	}

	s.token++
	token := s.token

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, func() {
		s.fire(query, token)
	})
	return token
}

func (s *Scheduler) fire(query string, token Token) {
	s.mu.Lock()
	if s.stopped || token != s.token {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	s.fn(s.ctx, query, token)
}

// Current reports whether token is still the latest issued token.
func (s *Scheduler) Current(token Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && token == s.token
}

// Invalidate stops the pending timer and makes every issued token stale.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Cancel tears the scheduler down: the timer is stopped, all tokens become
// stale and the context handed to running work is cancelled. Cancel waits
// for running work to return.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
}
