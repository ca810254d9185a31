// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"github.com/gorelay/relay/backoff"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// NewBackoffExecutor constructs the outermost stage of the execution
// chain. It delegates to the next stage and reports the outcome to the
// backoff manager, at most one call per invocation: BackOff when the
// strategy judges the failure or response degraded, Probe only on a
// healthy response. A failure the strategy declines makes no manager
// call at all. The delegate's failure is returned untouched either way.
//
// The strategy is consulted on any failure regardless of its kind, so
// even a failure the retry stage refuses to act on can still throttle
// the route.
func NewBackoffExecutor(next Executor, strategy backoff.Strategy, manager backoff.Manager) Executor {
	if next == nil {
		panic("relay: nil executor")
	}
	if strategy == nil {
		panic("relay: nil backoff strategy")
	}
	if manager == nil {
		panic("relay: nil backoff manager")
	}
	return &backoffExecutor{next: next, strategy: strategy, manager: manager}
}

type backoffExecutor struct {
	next     Executor
	strategy backoff.Strategy
	manager  backoff.Manager
}

func (x *backoffExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	resp, err := x.next.Execute(rt, req, e)
	if err != nil {
		if x.strategy.ShouldBackoff(err) {
			x.manager.BackOff(rt)
		}
		return nil, err
	}
	if x.strategy.ShouldBackoffResponse(resp) {
		x.manager.BackOff(rt)
	} else {
		x.manager.Probe(rt)
	}
	return resp, nil
}
