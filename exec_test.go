// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorelay/relay/request"
)

func TestNewMainExecutor(t *testing.T) {
	pool := &fakePool{}
	transport := &fakeTransport{}
	assert.PanicsWithValue(t, "relay: nil pool", func() { NewMainExecutor(nil, transport, nil, nil) })
	assert.PanicsWithValue(t, "relay: nil transport", func() { NewMainExecutor(pool, nil, nil, nil) })
	assert.NotNil(t, NewMainExecutor(pool, transport, nil, nil))
}

func TestMainExecutorAcquireError(t *testing.T) {
	pool := &fakePool{err: errors.New("pool exhausted")}
	x := NewMainExecutor(pool, &fakeTransport{}, nil, nil)
	_, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
	assert.EqualError(t, err, "pool exhausted")
}

func TestMainExecutorSendError(t *testing.T) {
	pool := &fakePool{}
	transport := &fakeTransport{script: []exchange{{err: errors.New("write failed")}}}
	x := NewMainExecutor(pool, transport, nil, nil)

	_, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
	assert.EqualError(t, err, "write failed")
	require.Len(t, pool.conns, 1)
	assert.Equal(t, 1, pool.conns[0].aborted)
	assert.Zero(t, pool.conns[0].released)
}

func TestMainExecutorNoBody(t *testing.T) {
	t.Run("KeepAliveReleases", func(t *testing.T) {
		pool := &fakePool{}
		transport := &fakeTransport{script: []exchange{{resp: textResponse(204, "")}}}
		x := NewMainExecutor(pool, transport, nil, nil)

		resp, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
		require.NoError(t, err)
		assert.Nil(t, resp.Body)
		require.Len(t, pool.conns, 1)
		assert.Equal(t, 1, pool.conns[0].released)
		assert.Zero(t, pool.conns[0].aborted)
	})
	t.Run("CloseRequestedAborts", func(t *testing.T) {
		pool := &fakePool{}
		transport := &fakeTransport{script: []exchange{{resp: textResponse(204, "")}}}
		x := NewMainExecutor(pool, transport, nil, nil)

		req := mustRequest("GET", "http://a.example/")
		req.Close = true
		_, err := x.Execute(testRoute("a.example"), req, &request.Execution{})
		require.NoError(t, err)
		require.Len(t, pool.conns, 1)
		assert.Zero(t, pool.conns[0].released)
		assert.Equal(t, 1, pool.conns[0].aborted)
	})
}

func TestMainExecutorBody(t *testing.T) {
	pool := &fakePool{}
	transport := &fakeTransport{script: []exchange{{resp: textResponse(200, "payload")}}}
	x := NewMainExecutor(pool, transport, nil, nil)

	resp, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
	require.NoError(t, err)
	require.NotNil(t, resp.Body)
	require.IsType(t, &managedBody{}, resp.Body)

	// Nothing finishes until the consumer is done with the body.
	require.Len(t, pool.conns, 1)
	assert.Zero(t, pool.conns[0].released)
	assert.Zero(t, pool.conns[0].aborted)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 1, pool.conns[0].released)
}

func TestMainExecutorAborted(t *testing.T) {
	pool := &fakePool{}
	x := NewMainExecutor(pool, &fakeTransport{}, nil, nil)
	req := mustRequest("GET", "http://a.example/")
	req.Aborter = &request.Aborter{}
	req.Aborter.Abort()

	_, err := x.Execute(testRoute("a.example"), req, &request.Execution{})
	assert.True(t, IsAborted(err))
	assert.Empty(t, pool.conns, "no connection is checked out for an aborted request")
}

func TestMainExecutorSetsUpAuth(t *testing.T) {
	x := NewMainExecutor(&fakePool{}, &fakeTransport{}, nil, nil)
	e := &request.Execution{}
	_, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), e)
	require.NoError(t, err)
	assert.NotNil(t, e.TargetAuth)
	assert.NotNil(t, e.ProxyAuth)
}

func TestMainExecutorTimeouts(t *testing.T) {
	pool := &fakePool{}
	transport := &fakeTransport{script: []exchange{{resp: textResponse(204, "")}}}
	x := NewMainExecutor(pool, transport, nil, nil)

	req := mustRequest("GET", "http://a.example/")
	req.Config.ConnRequestTimeout = 3 * time.Second
	req.Config.AttemptTimeout = 10 * time.Second
	_, err := x.Execute(testRoute("a.example"), req, &request.Execution{})
	require.NoError(t, err)

	require.Len(t, pool.timeouts, 1)
	assert.Equal(t, 3*time.Second, pool.timeouts[0])
	require.Len(t, transport.ctxs, 1)
	_, hasDeadline := transport.ctxs[0].Deadline()
	assert.True(t, hasDeadline)
}

func TestMainExecutorReuseStrategy(t *testing.T) {
	// A response the strategy refuses to keep alive aborts instead of
	// releasing, even with no body.
	pool := &fakePool{}
	resp := textResponse(204, "")
	resp.Proto = "HTTP/1.0"
	transport := &fakeTransport{script: []exchange{{resp: resp}}}
	x := NewMainExecutor(pool, transport, DefaultReuseStrategy, nil)

	_, err := x.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
	require.NoError(t, err)
	require.Len(t, pool.conns, 1)
	assert.Equal(t, 1, pool.conns[0].aborted)
	assert.Zero(t, pool.conns[0].released)
}
