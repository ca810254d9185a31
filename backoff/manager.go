// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/gorelay/relay/route"
)

// A Manager keeps per-route throttling state. The backoff stage calls
// BackOff when the strategy judged an outcome degraded and Probe when
// a healthy outcome suggests the route has recovered.
//
// Implementations of Manager must be safe for concurrent BackOff and
// Probe calls from different requests targeting the same route.
type Manager interface {
	BackOff(r *route.Route)
	Probe(r *route.Route)
}

// A Limiter is the connection pool knob an AIMD manager turns: the
// maximum number of pooled connections allowed per route. The pool
// owns the limit; the manager only reads and writes it.
type Limiter interface {
	MaxPerRoute(r *route.Route) int
	SetMaxPerRoute(r *route.Route, max int)
}

const (
	// DefaultCoolDown is the minimum interval between two adjustments
	// of the same route's limit.
	DefaultCoolDown = 5 * time.Second

	// DefaultFactor is the multiplicative decrease applied to a
	// route's limit on BackOff.
	DefaultFactor = 0.5

	// DefaultCap is the ceiling a route's limit can grow back to
	// through Probe calls.
	DefaultCap = 2
)

// AIMD is an additive-increase/multiplicative-decrease Manager. Each
// BackOff halves the route's per-route connection cap (never below
// one); each Probe raises it by one (never above the cap). Both
// adjustments are gated by a cool-down interval per route, so a burst
// of failures on a busy route collapses the limit once, not once per
// in-flight request.
//
// AIMD is safe for concurrent use by multiple goroutines.
type AIMD struct {
	limiter  Limiter
	coolDown time.Duration
	factor   float64
	cap      int
	clock    quartz.Clock

	mu          sync.Mutex
	lastBackoff map[string]time.Time
	lastProbe   map[string]time.Time
}

// An AIMDOption customizes an AIMD manager at construction.
type AIMDOption func(*AIMD)

// WithCoolDown sets the per-route cool-down interval. d must be
// positive.
func WithCoolDown(d time.Duration) AIMDOption {
	return func(m *AIMD) {
		if d <= 0 {
			panic("relay/backoff: cool-down must be positive")
		}
		m.coolDown = d
	}
}

// WithFactor sets the multiplicative decrease factor, which must be in
// (0, 1).
func WithFactor(f float64) AIMDOption {
	return func(m *AIMD) {
		if f <= 0 || f >= 1 {
			panic("relay/backoff: factor must be in (0, 1)")
		}
		m.factor = f
	}
}

// WithCap sets the ceiling a route's limit can recover to. n must be
// at least one.
func WithCap(n int) AIMDOption {
	return func(m *AIMD) {
		if n < 1 {
			panic("relay/backoff: cap must be at least 1")
		}
		m.cap = n
	}
}

// WithClock substitutes the clock used for cool-down accounting. Tests
// pass a quartz mock.
func WithClock(c quartz.Clock) AIMDOption {
	return func(m *AIMD) {
		m.clock = c
	}
}

// NewAIMD constructs an AIMD manager driving the given limiter.
func NewAIMD(limiter Limiter, opts ...AIMDOption) *AIMD {
	if limiter == nil {
		panic("relay/backoff: nil limiter")
	}
	m := &AIMD{
		limiter:     limiter,
		coolDown:    DefaultCoolDown,
		factor:      DefaultFactor,
		cap:         DefaultCap,
		clock:       quartz.NewReal(),
		lastBackoff: make(map[string]time.Time),
		lastProbe:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BackOff applies the multiplicative decrease to the route's limit if
// the route is outside its cool-down window.
func (m *AIMD) BackOff(r *route.Route) {
	key := r.Key()
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastBackoff[key]) < m.coolDown {
		return
	}
	curr := m.limiter.MaxPerRoute(r)
	next := int(float64(curr) * m.factor)
	if next < 1 {
		next = 1
	}
	m.limiter.SetMaxPerRoute(r, next)
	m.lastBackoff[key] = now
}

// Probe applies the additive increase to the route's limit if neither
// a backoff nor a probe touched the route within the cool-down window.
func (m *AIMD) Probe(r *route.Route) {
	key := r.Key()
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	last := m.lastProbe[key]
	if b := m.lastBackoff[key]; b.After(last) {
		last = b
	}
	if now.Sub(last) < m.coolDown {
		return
	}
	curr := m.limiter.MaxPerRoute(r)
	next := curr + 1
	if next > m.cap {
		next = m.cap
	}
	m.limiter.SetMaxPerRoute(r, next)
	m.lastProbe[key] = now
}
