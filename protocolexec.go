// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"github.com/gorelay/relay/intercept"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// NewProtocolExecutor constructs the stage that applies the protocol
// interceptor pipelines around the next stage: the request pipeline
// runs before delegation, the response pipeline after. An interceptor
// failure is a protocol failure: it is surfaced immediately and never
// retried by any stage.
func NewProtocolExecutor(next Executor, chain *intercept.Chain) Executor {
	if next == nil {
		panic("relay: nil executor")
	}
	if chain == nil {
		panic("relay: nil interceptor chain")
	}
	return &protocolExecutor{next: next, chain: chain}
}

type protocolExecutor struct {
	next  Executor
	chain *intercept.Chain
}

func (x *protocolExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	if err := x.chain.ProcessRequest(req, e); err != nil {
		return nil, NewProtocolError("request interceptor failed", err)
	}

	resp, err := x.next.Execute(rt, req, e)
	if err != nil {
		return nil, err
	}

	if err := x.chain.ProcessResponse(resp, req, e); err != nil {
		abandonBody(resp)
		return nil, NewProtocolError("response interceptor failed", err)
	}
	return resp, nil
}

// abandonBody discards a response the caller will never see, making
// sure a connection attached to its body is not left checked out.
func abandonBody(resp *request.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	if a, ok := resp.Body.(BodyAborter); ok {
		_ = a.Abort()
		return
	}
	_ = resp.Body.Close()
}
