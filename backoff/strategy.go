// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"net/http"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/transient"
)

// A Strategy judges whether an outcome indicates the route should be
// throttled. Failures and responses are judged separately: an attempt
// can fail outright with a transport error, or succeed but come back
// with a response that signals distress (for example 503).
//
// Implementations of Strategy must be safe for concurrent use by
// multiple goroutines.
type Strategy interface {
	// ShouldBackoff reports whether the failure warrants backing off
	// the route. It is consulted on any delegate failure regardless of
	// the failure's kind.
	ShouldBackoff(err error) bool

	// ShouldBackoffResponse reports whether a successfully received
	// response nonetheless indicates a degraded route.
	ShouldBackoffResponse(resp *request.Response) bool
}

// DefaultStrategy backs off on transient connection-level failures
// (timeouts, refused or reset connections) and on 503 Service
// Unavailable responses.
var DefaultStrategy Strategy = defaultStrategy{}

type defaultStrategy struct{}

func (defaultStrategy) ShouldBackoff(err error) bool {
	return transient.Is(err)
}

func (defaultStrategy) ShouldBackoffResponse(resp *request.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusServiceUnavailable
}
