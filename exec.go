// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/gorelay/relay/conn"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// NewMainExecutor constructs the innermost stage of the execution
// chain. It checks a connection for the route out of the pool
// (blocking up to the request's connection-request timeout), performs
// one HTTP exchange over it through the round tripper, and returns the
// response.
//
// On success, a response without a body releases the connection
// synchronously before returning; a response with a body hands the
// connection to the body's lifecycle watcher, which releases or aborts
// it when the consumer finishes with the stream. On any failure the
// connection is aborted before the failure propagates; no code path
// leaves a connection checked out. This stage never retries.
//
// reuse may be nil for DefaultReuseStrategy; logger may be nil for no
// logging.
func NewMainExecutor(pool conn.Pool, transport conn.RoundTripper, reuse ReuseStrategy, logger *zap.Logger) Executor {
	if pool == nil {
		panic("relay: nil pool")
	}
	if transport == nil {
		panic("relay: nil transport")
	}
	if reuse == nil {
		reuse = DefaultReuseStrategy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mainExecutor{pool: pool, transport: transport, reuse: reuse, logger: logger}
}

type mainExecutor struct {
	pool      conn.Pool
	transport conn.RoundTripper
	reuse     ReuseStrategy
	logger    *zap.Logger
}

func (x *mainExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	if req.Aborted() {
		return nil, ErrAborted
	}
	e.SetupAuth()

	ctx := req.Context()
	c, err := x.pool.Acquire(ctx, rt, req.Config.ConnRequestTimeout)
	if err != nil {
		return nil, err
	}

	// The checkout must end on every path from here on: the connection
	// is aborted on failure, released or handed to the body watcher on
	// success.
	sendCtx := ctx
	cancel := func() {}
	if t := req.Config.AttemptTimeout; t > 0 {
		sendCtx, cancel = context.WithTimeout(ctx, t)
	}

	resp, err := x.transport.Send(sendCtx, c, req)
	if err != nil {
		cancel()
		_ = c.Abort()
		return nil, err
	}

	if x.reuse.KeepAlive(resp, req, e) {
		c.MarkReusable()
	} else {
		c.UnmarkReusable()
	}

	if !resp.HasBody() {
		cancel()
		x.finishCheckout(c, rt)
		return resp, nil
	}

	resp.Body = newManagedBody(resp.Body, c, req.Aborter, cancel)
	return resp, nil
}

// finishCheckout ends a bodyless exchange's checkout synchronously:
// release when the connection is still reusable, abort otherwise.
func (x *mainExecutor) finishCheckout(c conn.Conn, rt *route.Route) {
	if c.IsMarkedReusable() && c.IsOpen() {
		if err := c.Release(); err != nil {
			x.logger.Debug("connection release failed, aborting",
				zap.String("route", rt.String()), zap.Error(err))
			_ = c.Abort()
		}
		return
	}
	_ = c.Abort()
}
