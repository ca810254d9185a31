// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

func TestDirectPlanner(t *testing.T) {
	target := route.Host{Scheme: "https", Name: "a.example"}
	rt, err := DirectPlanner{}.DetermineRoute(target, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, target, rt.Target())
	assert.Equal(t, 1, rt.HopCount())

	_, err = DirectPlanner{}.DetermineRoute(route.Host{}, nil, nil)
	assert.True(t, IsProtocol(err))
}

func TestProxyPlanner(t *testing.T) {
	proxy := route.Host{Scheme: "http", Name: "proxy.example", Port: 3128}
	p := ProxyPlanner{Proxy: proxy, NoProxy: []string{"internal.example"}}

	t.Run("ThroughProxy", func(t *testing.T) {
		rt, err := p.DetermineRoute(route.Host{Scheme: "https", Name: "a.example"}, nil, nil)
		require.NoError(t, err)
		got, ok := rt.Proxy()
		require.True(t, ok)
		assert.Equal(t, proxy, got)
	})
	t.Run("NoProxyBypass", func(t *testing.T) {
		rt, err := p.DetermineRoute(route.Host{Scheme: "https", Name: "INTERNAL.example"}, nil, nil)
		require.NoError(t, err)
		_, ok := rt.Proxy()
		assert.False(t, ok)
	})
	t.Run("MissingTarget", func(t *testing.T) {
		_, err := p.DetermineRoute(route.Host{}, nil, nil)
		assert.True(t, IsProtocol(err))
	})
}

func TestDefaultReuseStrategy(t *testing.T) {
	keepAlive := func(mutate func(req *request.Request, resp *request.Response)) bool {
		req := mustRequest("GET", "http://a.example/")
		resp := textResponse(200, "")
		if mutate != nil {
			mutate(req, resp)
		}
		return DefaultReuseStrategy.KeepAlive(resp, req, &request.Execution{})
	}

	assert.True(t, keepAlive(nil))
	assert.False(t, keepAlive(func(req *request.Request, _ *request.Response) {
		req.Close = true
	}))
	assert.False(t, keepAlive(func(_ *request.Request, resp *request.Response) {
		resp.Header.Set("Connection", "close")
	}))
	assert.False(t, keepAlive(func(_ *request.Request, resp *request.Response) {
		resp.Header.Set("Connection", "Upgrade, Close")
	}))
	assert.False(t, keepAlive(func(_ *request.Request, resp *request.Response) {
		resp.Proto = "HTTP/1.0"
	}))
	assert.True(t, keepAlive(func(_ *request.Request, resp *request.Response) {
		resp.Proto = "HTTP/1.0"
		resp.Header.Set("Connection", "keep-alive")
	}))
}

func TestExecutorFunc(t *testing.T) {
	called := 0
	f := ExecutorFunc(func(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
		called++
		return textResponse(204, ""), nil
	})
	resp, err := f.Execute(testRoute("a.example"), mustRequest("GET", "http://a.example/"), &request.Execution{})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, 1, called)
}
