// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"github.com/coder/quartz"
	"go.uber.org/zap"

	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/retry"
	"github.com/gorelay/relay/route"
)

// NewRetryExecutor constructs the stage that re-issues failed attempts
// according to the retry policy. Only transport failures from the next
// stage are candidates: protocol failures, aborts, and context
// cancellation pass through untouched, and a request whose body is not
// repeatable is never retried regardless of policy.
//
// The attempt counter restarts at zero each time the stage is entered,
// so each redirect hop gets the policy's full retry allowance.
//
// clock may be nil for the real clock; logger may be nil for no
// logging.
func NewRetryExecutor(next Executor, policy retry.Policy, clock quartz.Clock, logger *zap.Logger) Executor {
	if next == nil {
		panic("relay: nil executor")
	}
	if policy == nil {
		panic("relay: nil retry policy")
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryExecutor{next: next, policy: policy, clock: clock, logger: logger}
}

type retryExecutor struct {
	next   Executor
	policy retry.Policy
	clock  quartz.Clock
	logger *zap.Logger
}

func (x *retryExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	// The protocol stage below mutates the request's headers on every
	// attempt, so each retry restarts from the headers the request
	// entered with.
	origHeader := request.CloneHeader(req.Header)
	e.Attempt = 0
	for {
		resp, err := x.next.Execute(rt, req, e)
		if err == nil {
			return resp, nil
		}
		if IsProtocol(err) || IsAborted(err) {
			return nil, err
		}
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, err
		}
		if !req.Repeatable() {
			return nil, err
		}
		if !x.policy.Decide(err, req, e) {
			return nil, err
		}

		wait := x.policy.Wait(e)
		x.logger.Debug("retrying request attempt",
			zap.Int("attempt", e.Attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		if wait > 0 {
			t := x.clock.NewTimer(wait)
			select {
			case <-t.C:
			case <-req.Context().Done():
				t.Stop()
				return nil, err
			}
		}
		req.Header = request.CloneHeader(origHeader)
		e.Attempt++
	}
}
