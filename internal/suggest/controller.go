package suggest

import (
	"context"
	"strings"
	"time"

	"github.com/lepinkainen/marginalia/internal/debounce"
)

// Controller feeds keystrokes through a debounce.Scheduler into an
// Aggregator. Each debounced fetch is applied only while its token is still
// the scheduler's latest.
type Controller struct {
	agg      *Aggregator
	sched    *debounce.Scheduler
	trending []string
	onUpdate func(State)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTrending sets the terms shown while the input is empty.
func WithTrending(terms []string) ControllerOption {
	return func(c *Controller) {
		c.trending = append([]string(nil), terms...)
	}
}

// WithOnUpdate registers a callback invoked after every state change the
// controller makes. It runs on the scheduler's goroutine for debounced fetches.
func WithOnUpdate(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// NewController creates a Controller with the given debounce window.
func NewController(agg *Aggregator, window time.Duration, opts ...ControllerOption) *Controller {
	c := &Controller{agg: agg}
	for _, opt := range opts {
		opt(c)
	}
	c.sched = debounce.New(window, c.run)
	c.showEmpty()
	return c
}

// SetQuery reacts to an input change. Empty input clears suggestions at once
// and cancels any pending fetch; anything else schedules a debounced fetch.
func (c *Controller) SetQuery(query string) {
	if strings.TrimSpace(query) == "" {
		c.sched.Invalidate()
		c.showEmpty()
		c.notify()
		return
	}
	c.sched.Schedule(query)
}

func (c *Controller) showEmpty() {
	if len(c.trending) > 0 {
		c.agg.ShowTrending(c.trending)
		return
	}
	c.agg.Clear()
}

func (c *Controller) run(ctx context.Context, query string, token debounce.Token) {
	c.agg.FetchIfCurrent(ctx, query, func() bool {
		return c.sched.Current(token)
	})
	c.notify()
}

func (c *Controller) notify() {
	if c.onUpdate != nil {
		c.onUpdate(c.agg.State())
	}
}

// Aggregator returns the controlled aggregator.
func (c *Controller) Aggregator() *Aggregator {
	return c.agg
}

// State returns the aggregator state.
func (c *Controller) State() State {
	return c.agg.State()
}

// Close cancels the pending fetch. No fetch is scheduled afterwards.
func (c *Controller) Close() {
	c.sched.Cancel()
}
