// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"strings"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// An Executor is one stage of the execution chain. Every stage wraps
// the next one and conforms to the same contract: execute the request
// against the route, in the context of the per-call execution state,
// and return the response or the failure.
//
// Implementations must be stateless or hold only immutable
// configuration after construction, so that a single chain instance
// can serve many concurrent top-level calls.
type Executor interface {
	Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error)

// Execute calls f.
func (f ExecutorFunc) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	return f(rt, req, e)
}

// A RoutePlanner resolves the route (proxy chain plus target) for a
// target host. The client facade consults it once per call, and the
// redirect stage consults it again after every hop that moves the
// target.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type RoutePlanner interface {
	DetermineRoute(target route.Host, req *request.Request, e *request.Execution) (*route.Route, error)
}

// DirectPlanner plans a proxy-less route straight to the target host.
type DirectPlanner struct{}

// DetermineRoute returns the direct route to target.
func (DirectPlanner) DetermineRoute(target route.Host, _ *request.Request, _ *request.Execution) (*route.Route, error) {
	if target.Name == "" {
		return nil, &ProtocolError{msg: "no route: target host missing"}
	}
	return route.Direct(target), nil
}

// ProxyPlanner plans every route through a fixed proxy, except for
// hosts matched by the NoProxy list, which connect directly.
type ProxyPlanner struct {
	// Proxy is the proxy every non-exempt route goes through.
	Proxy route.Host

	// NoProxy lists host names (case-insensitive, no wildcards) that
	// bypass the proxy.
	NoProxy []string
}

// DetermineRoute returns the route to target through the configured
// proxy, or a direct route for NoProxy-listed hosts.
func (p ProxyPlanner) DetermineRoute(target route.Host, _ *request.Request, _ *request.Execution) (*route.Route, error) {
	if target.Name == "" {
		return nil, &ProtocolError{msg: "no route: target host missing"}
	}
	for _, name := range p.NoProxy {
		if strings.EqualFold(name, target.Name) {
			return route.Direct(target), nil
		}
	}
	return route.Via(target, p.Proxy), nil
}

// A ReuseStrategy decides whether the connection that produced a
// response may be kept alive and returned to the pool for reuse. The
// main execution stage consults it once per exchange, before the
// response travels back up the chain.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type ReuseStrategy interface {
	KeepAlive(resp *request.Response, req *request.Request, e *request.Execution) bool
}

// DefaultReuseStrategy keeps a connection alive unless the request
// asked for closure, either side sent "Connection: close", or the
// exchange ran over HTTP/1.0 without an explicit keep-alive.
var DefaultReuseStrategy ReuseStrategy = defaultReuseStrategy{}

type defaultReuseStrategy struct{}

func (defaultReuseStrategy) KeepAlive(resp *request.Response, req *request.Request, _ *request.Execution) bool {
	if req.Close {
		return false
	}
	if headerHasToken(resp.Header.Get("Connection"), "close") {
		return false
	}
	if resp.Proto == "HTTP/1.0" && !headerHasToken(resp.Header.Get("Connection"), "keep-alive") {
		return false
	}
	return true
}

func headerHasToken(header, token string) bool {
	for _, t := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(t), token) {
			return true
		}
	}
	return false
}
