// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorelay/relay/route"
)

type mapLimiter struct {
	mu     sync.Mutex
	limits map[string]int
	def    int
}

func newMapLimiter(def int) *mapLimiter {
	return &mapLimiter{limits: make(map[string]int), def: def}
}

func (l *mapLimiter) MaxPerRoute(r *route.Route) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.limits[r.Key()]; ok {
		return n
	}
	return l.def
}

func (l *mapLimiter) SetMaxPerRoute(r *route.Route, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits[r.Key()] = max
}

func testRoute(name string) *route.Route {
	return route.Direct(route.Host{Scheme: "http", Name: name})
}

func TestNewAIMD(t *testing.T) {
	assert.PanicsWithValue(t, "relay/backoff: nil limiter", func() { NewAIMD(nil) })
	assert.PanicsWithValue(t, "relay/backoff: cool-down must be positive", func() {
		NewAIMD(newMapLimiter(1), WithCoolDown(0))
	})
	assert.PanicsWithValue(t, "relay/backoff: factor must be in (0, 1)", func() {
		NewAIMD(newMapLimiter(1), WithFactor(1.0))
	})
	assert.PanicsWithValue(t, "relay/backoff: cap must be at least 1", func() {
		NewAIMD(newMapLimiter(1), WithCap(0))
	})
}

func TestAIMDBackOff(t *testing.T) {
	r := testRoute("a.example")
	clock := quartz.NewMock(t)
	lim := newMapLimiter(8)
	m := NewAIMD(lim, WithClock(clock), WithCap(8))

	t.Run("Halves", func(t *testing.T) {
		m.BackOff(r)
		assert.Equal(t, 4, lim.MaxPerRoute(r))
	})
	t.Run("CoolDownGates", func(t *testing.T) {
		m.BackOff(r)
		assert.Equal(t, 4, lim.MaxPerRoute(r))
		clock.Advance(DefaultCoolDown - time.Millisecond)
		m.BackOff(r)
		assert.Equal(t, 4, lim.MaxPerRoute(r))
	})
	t.Run("AppliesAfterCoolDown", func(t *testing.T) {
		clock.Advance(time.Millisecond)
		m.BackOff(r)
		assert.Equal(t, 2, lim.MaxPerRoute(r))
	})
	t.Run("FloorOfOne", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			clock.Advance(DefaultCoolDown)
			m.BackOff(r)
		}
		assert.Equal(t, 1, lim.MaxPerRoute(r))
	})
}

func TestAIMDProbe(t *testing.T) {
	r := testRoute("a.example")
	clock := quartz.NewMock(t)
	lim := newMapLimiter(1)
	m := NewAIMD(lim, WithClock(clock), WithCap(3))

	t.Run("Increments", func(t *testing.T) {
		m.Probe(r)
		assert.Equal(t, 2, lim.MaxPerRoute(r))
	})
	t.Run("CoolDownGates", func(t *testing.T) {
		m.Probe(r)
		assert.Equal(t, 2, lim.MaxPerRoute(r))
	})
	t.Run("Cap", func(t *testing.T) {
		clock.Advance(DefaultCoolDown)
		m.Probe(r)
		require.Equal(t, 3, lim.MaxPerRoute(r))
		clock.Advance(DefaultCoolDown)
		m.Probe(r)
		assert.Equal(t, 3, lim.MaxPerRoute(r))
	})
	t.Run("GatedByRecentBackOff", func(t *testing.T) {
		clock.Advance(DefaultCoolDown)
		m.BackOff(r)
		require.Equal(t, 1, lim.MaxPerRoute(r))
		clock.Advance(DefaultCoolDown / 2)
		m.Probe(r)
		assert.Equal(t, 1, lim.MaxPerRoute(r))
		clock.Advance(DefaultCoolDown / 2)
		m.Probe(r)
		assert.Equal(t, 2, lim.MaxPerRoute(r))
	})
}

func TestAIMDRoutesIndependent(t *testing.T) {
	a := testRoute("a.example")
	b := testRoute("b.example")
	clock := quartz.NewMock(t)
	lim := newMapLimiter(4)
	m := NewAIMD(lim, WithClock(clock))

	m.BackOff(a)
	assert.Equal(t, 2, lim.MaxPerRoute(a))
	assert.Equal(t, 4, lim.MaxPerRoute(b))
	m.BackOff(b)
	assert.Equal(t, 2, lim.MaxPerRoute(b))
}

func TestAIMDOptions(t *testing.T) {
	r := testRoute("a.example")
	clock := quartz.NewMock(t)
	lim := newMapLimiter(9)
	m := NewAIMD(lim, WithClock(clock), WithFactor(1.0/3.0), WithCoolDown(time.Second), WithCap(9))

	m.BackOff(r)
	assert.Equal(t, 3, lim.MaxPerRoute(r))
	clock.Advance(time.Second)
	m.BackOff(r)
	assert.Equal(t, 1, lim.MaxPerRoute(r))
}
