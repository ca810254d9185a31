// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorelay/relay/backoff"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

type countingManager struct {
	backoffs int
	probes   int
	routes   []*route.Route
}

func (m *countingManager) BackOff(r *route.Route) {
	m.backoffs++
	m.routes = append(m.routes, r)
}

func (m *countingManager) Probe(r *route.Route) {
	m.probes++
	m.routes = append(m.routes, r)
}

func TestNewBackoffExecutor(t *testing.T) {
	next := &scriptedExecutor{}
	assert.PanicsWithValue(t, "relay: nil executor", func() {
		NewBackoffExecutor(nil, backoff.DefaultStrategy, &countingManager{})
	})
	assert.PanicsWithValue(t, "relay: nil backoff strategy", func() {
		NewBackoffExecutor(next, nil, &countingManager{})
	})
	assert.PanicsWithValue(t, "relay: nil backoff manager", func() {
		NewBackoffExecutor(next, backoff.DefaultStrategy, nil)
	})
}

func TestBackoffExecutor(t *testing.T) {
	rt := testRoute("a.example")
	req := mustRequest("GET", "http://a.example/")

	t.Run("DegradedError", func(t *testing.T) {
		next := &scriptedExecutor{script: []exchange{{err: syscall.ECONNREFUSED}}}
		m := &countingManager{}
		x := NewBackoffExecutor(next, backoff.DefaultStrategy, m)

		_, err := x.Execute(rt, req, &request.Execution{})
		assert.ErrorIs(t, err, syscall.ECONNREFUSED)
		assert.Equal(t, 1, m.backoffs)
		assert.Zero(t, m.probes)
		require.Len(t, m.routes, 1)
		assert.True(t, m.routes[0].Equal(rt))
	})
	t.Run("OtherError", func(t *testing.T) {
		// A failure the strategy declines makes no manager call: a
		// failed request must never decay the route's throttling.
		boom := errors.New("application error")
		next := &scriptedExecutor{script: []exchange{{err: boom}}}
		m := &countingManager{}
		x := NewBackoffExecutor(next, backoff.DefaultStrategy, m)

		_, err := x.Execute(rt, req, &request.Execution{})
		assert.Same(t, boom, err, "the failure passes through untouched")
		assert.Zero(t, m.backoffs)
		assert.Zero(t, m.probes)
	})
	t.Run("DegradedResponse", func(t *testing.T) {
		next := &scriptedExecutor{script: []exchange{{resp: textResponse(503, "")}}}
		m := &countingManager{}
		x := NewBackoffExecutor(next, backoff.DefaultStrategy, m)

		resp, err := x.Execute(rt, req, &request.Execution{})
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, 1, m.backoffs)
		assert.Zero(t, m.probes)
	})
	t.Run("HealthyResponse", func(t *testing.T) {
		next := &scriptedExecutor{script: []exchange{{resp: textResponse(200, "")}}}
		m := &countingManager{}
		x := NewBackoffExecutor(next, backoff.DefaultStrategy, m)

		_, err := x.Execute(rt, req, &request.Execution{})
		require.NoError(t, err)
		assert.Zero(t, m.backoffs)
		assert.Equal(t, 1, m.probes)
	})
}
