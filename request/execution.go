// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"github.com/gorelay/relay/auth"
	"github.com/gorelay/relay/route"
)

// An Execution carries the mutable state scoped to a single top-level
// call through the execution chain.
//
// An Execution is created (or reused, if the caller supplies one) when
// a top-level call starts, populated lazily by the stages, and
// discarded after the call returns. It is never shared between
// concurrent calls, so it needs no synchronization.
//
// The authentication states are carried here rather than on the
// request because they must survive request cloning across redirect
// hops: a redirect to the same host keeps negotiated credentials,
// while a redirect to a different host resets them in place.
type Execution struct {
	// Request is the original caller-supplied request. Internal stages
	// never mutate it; the redirect stage copies its headers and
	// configuration onto each per-hop clone.
	Request *Request

	// Route is the route the current attempt is executing against. The
	// redirect stage updates it when it replans after a hop.
	Route *route.Route

	// TargetAuth is the authentication state against the target host.
	// Created by the first stage that needs it if the caller did not
	// supply one.
	TargetAuth *auth.State

	// ProxyAuth is the authentication state against the proxy, tracked
	// independently of TargetAuth.
	ProxyAuth *auth.State

	// Attempt is the zero-based number of the current attempt at the
	// retry stage's level: zero on the initial attempt, one on the
	// first retry, and so on. The retry stage restarts it each time it
	// is entered, so each redirect hop counts its own attempts.
	Attempt int

	// Redirects counts the redirect hops followed so far in this call.
	Redirects int
}

// SetupAuth ensures both authentication states exist, creating empty
// ones where the caller did not supply them. It is idempotent.
func (e *Execution) SetupAuth() {
	if e.TargetAuth == nil {
		e.TargetAuth = &auth.State{}
	}
	if e.ProxyAuth == nil {
		e.ProxyAuth = &auth.State{}
	}
}

// Aborted reports whether the original request's aborter has fired.
func (e *Execution) Aborted() bool {
	return e.Request != nil && e.Request.Aborted()
}
