// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/gorelay/relay/auth"
	"github.com/gorelay/relay/backoff"
	"github.com/gorelay/relay/conn"
	"github.com/gorelay/relay/intercept"
	"github.com/gorelay/relay/redirect"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/retry"
	"github.com/gorelay/relay/route"
)

// Client is a robust HTTP client built from an execution chain of
// stages: backoff (outermost), redirect, retry, protocol, and main
// execution (innermost). Each field customizes one collaborator; the
// zero value of every field selects a sensible default, except Pool
// and Transport, which must be provided.
//
// Configure the fields before the first call to Do. The chain is
// assembled once, on first use, and the Client is then safe for
// concurrent use by multiple goroutines.
type Client struct {
	// Pool checks connections in and out per route. Required.
	Pool conn.Pool

	// Transport performs a single HTTP exchange over a checked-out
	// connection. Required.
	Transport conn.RoundTripper

	// Planner resolves target hosts to routes. If nil, every request
	// gets a direct proxy-less route.
	Planner RoutePlanner

	// RedirectStrategy decides which responses redirect which requests.
	// If nil, redirect.Default is used.
	RedirectStrategy redirect.Strategy

	// RetryPolicy governs re-issuing failed attempts. If nil,
	// retry.DefaultPolicy is used. See also DisableRetries.
	RetryPolicy retry.Policy

	// BackoffStrategy and BackoffManager together enable the backoff
	// stage. The stage is added only when both are set.
	BackoffStrategy backoff.Strategy
	BackoffManager  backoff.Manager

	// ReuseStrategy decides connection keep-alive. If nil,
	// DefaultReuseStrategy is used.
	ReuseStrategy ReuseStrategy

	// Jar, if set, injects matching cookies into requests and records
	// Set-Cookie response headers. See also DisableCookies.
	Jar http.CookieJar

	// AuthCache, if set, primes authentication state from schemes hosts
	// accepted in earlier executions. See also DisableAuthCaching.
	AuthCache *auth.Cache

	// UserAgent is sent as the User-Agent header on requests that do
	// not set their own.
	UserAgent string

	// DefaultHeaders are added to every request that does not already
	// carry them.
	DefaultHeaders http.Header

	// RequestInterceptors run after the built-in request interceptors,
	// in order. ResponseInterceptors run after the built-in response
	// interceptors, in order.
	RequestInterceptors  []intercept.RequestInterceptor
	ResponseInterceptors []intercept.ResponseInterceptor

	// DisableRetries removes the retry stage from the chain.
	DisableRetries bool

	// DisableCookies skips cookie handling even when Jar is set.
	DisableCookies bool

	// DisableCompression skips the gzip Accept-Encoding request header
	// and the transparent response decoding.
	DisableCompression bool

	// DisableAuthCaching skips preemptive authentication even when
	// AuthCache is set.
	DisableAuthCaching bool

	// Logger receives debug-level events from the stages. If nil,
	// logging is off.
	Logger *zap.Logger

	once  sync.Once
	chain Executor
}

// Do executes the request through the chain and returns the final
// response. If the response has a body, the caller owns it and must
// close it (or read it to the end) to return the underlying connection
// to the pool.
//
// Terminal failures are returned as *url.Error, like the standard
// library's client.
func (c *Client) Do(req *request.Request) (*request.Response, error) {
	return c.DoWithExecution(req, &request.Execution{})
}

// DoWithExecution is Do with a caller-supplied execution state, letting
// the caller pre-populate authentication state and inspect attempt and
// redirect counters afterward. The counters are per-call and restart at
// zero on every call, so one execution may be reused across calls.
func (c *Client) DoWithExecution(req *request.Request, e *request.Execution) (*request.Response, error) {
	if req == nil {
		panic("relay: nil request")
	}
	if e == nil {
		panic("relay: nil execution")
	}
	if req.Aborted() {
		return nil, urlErrorWrap(req, ErrAborted)
	}

	target, ok := route.HostFromURL(req.URL)
	if !ok {
		return nil, urlErrorWrap(req, NewProtocolError("request URI does not specify a valid host name", nil))
	}

	e.Request = req
	e.Attempt = 0
	e.Redirects = 0
	e.SetupAuth()

	c.once.Do(c.buildChain)

	rt, err := c.planner().DetermineRoute(target, req, e)
	if err != nil {
		return nil, urlErrorWrap(req, err)
	}
	e.Route = rt

	resp, err := c.chain.Execute(rt, req, e)
	if err != nil {
		return nil, urlErrorWrap(req, err)
	}
	return resp, nil
}

// Get issues a GET to the given URL.
func (c *Client) Get(ctx context.Context, url string) (*request.Response, error) {
	req, err := request.NewWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Head issues a HEAD to the given URL.
func (c *Client) Head(ctx context.Context, url string) (*request.Response, error) {
	req, err := request.NewWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post issues a POST to the given URL with the given body and content
// type. The body may be nil, a string, a []byte, or an io.Reader.
func (c *Client) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	req, err := request.NewWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

func (c *Client) planner() RoutePlanner {
	if c.Planner != nil {
		return c.Planner
	}
	return DirectPlanner{}
}

// buildChain assembles the stages from innermost to outermost in the
// fixed order: main, protocol, retry, redirect, backoff.
func (c *Client) buildChain() {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	x := NewMainExecutor(c.Pool, c.Transport, c.ReuseStrategy, logger)
	x = NewProtocolExecutor(x, c.interceptors())

	if !c.DisableRetries {
		policy := c.RetryPolicy
		if policy == nil {
			policy = retry.DefaultPolicy
		}
		x = NewRetryExecutor(x, policy, nil, logger)
	}

	strategy := c.RedirectStrategy
	if strategy == nil {
		strategy = redirect.Default
	}
	x = NewRedirectExecutor(x, strategy, c.planner(), logger)

	if c.BackoffStrategy != nil && c.BackoffManager != nil {
		x = NewBackoffExecutor(x, c.BackoffStrategy, c.BackoffManager)
	}

	c.chain = x
}

// interceptors assembles the protocol pipelines in the fixed built-in
// order, followed by the caller's extras.
func (c *Client) interceptors() *intercept.Chain {
	reqs := []intercept.RequestInterceptor{
		intercept.DefaultHeaders(c.DefaultHeaders),
		intercept.ContentFraming(),
		intercept.TargetHost(),
		intercept.ConnControl(),
		intercept.UserAgent(c.UserAgent),
		intercept.ExpectContinue(),
	}
	if c.Jar != nil && !c.DisableCookies {
		reqs = append(reqs, intercept.AddCookies(c.Jar))
	}
	if !c.DisableCompression {
		reqs = append(reqs, intercept.AcceptEncoding())
	}
	if c.AuthCache != nil && !c.DisableAuthCaching {
		reqs = append(reqs, intercept.AuthCache(c.AuthCache))
	}
	reqs = append(reqs, c.RequestInterceptors...)

	var resps []intercept.ResponseInterceptor
	if c.Jar != nil && !c.DisableCookies {
		resps = append(resps, intercept.ProcessCookies(c.Jar))
	}
	if !c.DisableCompression {
		resps = append(resps, intercept.ContentDecoding())
	}
	resps = append(resps, c.ResponseInterceptors...)

	return intercept.NewChain(reqs, resps)
}
