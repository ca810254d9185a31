// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/transient"
)

// A Decider decides if a failed request attempt should be retried.
//
// The retry stage consults the Decider with the transport failure, the
// request whose attempt failed (which may be a redirect-hop clone, not
// the caller's original), and the execution state carrying the attempt
// counter. The stage itself has already excluded protocol failures and
// non-repeatable bodies before the Decider is asked.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(err error, req *request.Request, e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface and
// provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(err error, req *request.Request, e *request.Execution) bool

// DefaultTimes is the number of times DefaultPolicy will retry.
const DefaultTimes = 3

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases: up to DefaultTimes retries of idempotent requests
// that failed with a transient transport error.
var DefaultDecider = Times(DefaultTimes).And(Idempotent).And(TransientErr)

// TransientErr is a decider that indicates a retry if the failure is
// transient according to transient.Categorize.
var TransientErr DeciderFunc = func(err error, _ *request.Request, _ *request.Execution) bool {
	return transient.Is(err)
}

// Idempotent is a decider that indicates a retry only for methods with
// idempotent semantics per RFC 7231: GET, HEAD, PUT, DELETE, OPTIONS,
// and TRACE. An empty method counts as GET.
var Idempotent DeciderFunc = func(_ error, req *request.Request, _ *request.Execution) bool {
	switch req.Method {
	case "", "GET", "HEAD", "PUT", "DELETE", "OPTIONS", "TRACE":
		return true
	default:
		return false
	}
}

// Decide returns true if a retry should be done, and false otherwise.
func (f DeciderFunc) Decide(err error, req *request.Request, e *request.Execution) bool {
	return f(err, req, e)
}

// And composes two retry deciders into a new decider which returns
// true only if both sub-deciders return true. Short-circuit logic is
// used, so g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(err error, req *request.Request, e *request.Execution) bool {
		return f(err, req, e) && g(err, req, e)
	}
}

// Or composes two retry deciders into a new decider which returns true
// if either sub-decider returns true. Short-circuit logic is used, so
// g is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(err error, req *request.Request, e *request.Execution) bool {
		return f(err, req, e) || g(err, req, e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the zero-based attempt counter
// is less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(_ error, _ *request.Request, e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Methods constructs a retry decider allowing retries only for the
// listed HTTP methods.
func Methods(ms ...string) DeciderFunc {
	ms2 := make([]string, len(ms))
	copy(ms2, ms)
	return func(_ error, req *request.Request, _ *request.Execution) bool {
		for _, m := range ms2 {
			if req.Method == m {
				return true
			}
		}
		return false
	}
}

// Deadline constructs a retry decider allowing retries only while the
// request context has at least d left before its deadline. A context
// without a deadline always allows the retry.
func Deadline(d time.Duration) DeciderFunc {
	return func(_ error, req *request.Request, _ *request.Execution) bool {
		dl, ok := req.Context().Deadline()
		if !ok {
			return true
		}
		return time.Until(dl) >= d
	}
}
