// Package health aggregates component checks into one service report.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusUp       Status = "UP"
	StatusDegraded Status = "DEGRADED"
	StatusDown     Status = "DOWN"
)

type Component struct {
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	Status     Status               `json:"status"`
	Timestamp  time.Time            `json:"timestamp"`
	Uptime     string               `json:"uptime"`
	Components map[string]Component `json:"components"`
}

// CheckFunc must honour ctx; the aggregator gives each check a deadline.
type CheckFunc func(ctx context.Context) Component

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

type Aggregator struct {
	started time.Time
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	checks []check
}

type Option func(*Aggregator)

func WithTimeout(d time.Duration) Option    { return func(a *Aggregator) { a.timeout = d } }
func WithClock(now func() time.Time) Option { return func(a *Aggregator) { a.now = now } }

func New(opts ...Option) *Aggregator {
	a := &Aggregator{timeout: 2 * time.Second, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	a.started = a.now()
	return a
}

// Register adds a check. A critical component that is DOWN takes the whole
// report DOWN; any other failure only degrades it.
func (a *Aggregator) Register(name string, critical bool, fn CheckFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks = append(a.checks, check{name: name, critical: critical, fn: fn})
}

func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.checks))
	for _, c := range a.checks {
		out = append(out, c.name)
	}
	sort.Strings(out)
	return out
}

func (a *Aggregator) Check(ctx context.Context) Report {
	a.mu.RLock()
	checks := append([]check(nil), a.checks...)
	a.mu.RUnlock()

	results := make([]Component, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()
			results[i] = c.fn(cctx)
			return nil
		})
	}
	g.Wait()

	now := a.now()
	rep := Report{
		Status:     StatusUp,
		Timestamp:  now.UTC(),
		Uptime:     now.Sub(a.started).Round(time.Second).String(),
		Components: make(map[string]Component, len(checks)),
	}
	for i, c := range checks {
		res := results[i]
		rep.Components[c.name] = res
		switch {
		case res.Status == StatusDown && c.critical:
			rep.Status = StatusDown
		case res.Status != StatusUp && rep.Status == StatusUp:
			rep.Status = StatusDegraded
		}
	}
	return rep
}

// Ping turns an error-returning probe into a check.
func Ping(fn func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Component {
		if err := fn(ctx); err != nil {
			return Component{Status: StatusDown, Detail: err.Error()}
		}
		return Component{Status: StatusUp}
	}
}
