// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gorelay/relay/request"
)

// A Policy controls if and how the retry stage re-issues failed
// request attempts. After a transport failure, the Policy decides
// whether another attempt is worthwhile and, if so, how long to pause
// before making it.
//
// Implementations of Policy must be safe for concurrent use by
// multiple goroutines.
//
// A Policy is the composition of the Decider and Waiter interfaces.
// Use NewPolicy to assemble one from existing parts, or use the
// built-in DefaultPolicy or Never.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases: DefaultDecider for the retry decision, DefaultWaiter for
// the pause.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries.
var Never Policy = policy{Times(0), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("relay/retry: nil decider")
	}
	if w == nil {
		panic("relay/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(err error, req *request.Request, e *request.Execution) bool {
	return p.decider.Decide(err, req, e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
