// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package conn defines the seams between the execution chain and its
// external collaborators: the pooled connection it borrows, the pool
// it borrows from, and the wire-level round tripper that moves HTTP
// messages over the connection. The chain never dials, pools, or
// serializes anything itself.
package conn

import (
	"context"
	"time"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// A Conn is a pooled network connection checked out by exactly one
// in-flight request. The holder must finish the checkout with exactly
// one call to Release or Abort; the pool may assume the two are never
// mixed for one checkout.
//
// A Conn is handed between owners (main execution stage, then the
// response entity watcher) but is never shared, so implementations
// need only make Release and Abort safe against the pool's internals,
// not against each other.
type Conn interface {
	// IsOpen reports whether the underlying transport connection is
	// still usable.
	IsOpen() bool

	// MarkReusable flags the connection as eligible to return to the
	// pool in a keep-alive state once released.
	MarkReusable()

	// UnmarkReusable clears the reusable flag, forcing the connection
	// to be discarded when released.
	UnmarkReusable()

	// IsMarkedReusable reports the current reusable flag.
	IsMarkedReusable() bool

	// Release returns the connection to the pool, honoring the
	// reusable flag. The checkout ends.
	Release() error

	// Abort shuts the connection down and discards it. The checkout
	// ends.
	Abort() error
}

// A Pool hands out connections for routes. Acquire blocks until a
// connection is available, the timeout elapses, or ctx is done. A zero
// timeout means no bound beyond ctx.
//
// Pools are externally owned and internally synchronized; the chain
// only checks connections out and hands them back through Conn.
type Pool interface {
	Acquire(ctx context.Context, r *route.Route, timeout time.Duration) (Conn, error)
}

// A RoundTripper performs one HTTP exchange over an open connection:
// it writes the request and reads back the response status line,
// headers, and body stream. It does not retry, redirect, or touch the
// connection's checkout state.
//
// The returned response's Body, if any, streams from the connection;
// the caller arranges for the connection's release or abort around the
// body's lifecycle.
type RoundTripper interface {
	Send(ctx context.Context, c Conn, req *request.Request) (*request.Response, error)
}
