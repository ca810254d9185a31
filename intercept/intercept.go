// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package intercept implements the protocol stage's interceptor
// pipeline: small, ordered transformations applied to every request
// before it is sent and to every response before it is returned.
// Ordering is significant; the Chain preserves the order interceptors
// were given in.
package intercept

import (
	"fmt"

	"golang.org/x/net/http/httpguts"

	"github.com/gorelay/relay/request"
)

// A RequestInterceptor inspects or mutates an outgoing request before
// it is transmitted. Interceptors run on the per-hop request (a clone
// on redirect hops), never on the caller's original.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type RequestInterceptor interface {
	Process(req *request.Request, e *request.Execution) error
}

// A ResponseInterceptor inspects or mutates an incoming response
// before it travels back up the chain. req is the request the
// response answers.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type ResponseInterceptor interface {
	Process(resp *request.Response, req *request.Request, e *request.Execution) error
}

// RequestInterceptorFunc adapts a function to the RequestInterceptor
// interface.
type RequestInterceptorFunc func(req *request.Request, e *request.Execution) error

// Process calls f.
func (f RequestInterceptorFunc) Process(req *request.Request, e *request.Execution) error {
	return f(req, e)
}

// ResponseInterceptorFunc adapts a function to the ResponseInterceptor
// interface.
type ResponseInterceptorFunc func(resp *request.Response, req *request.Request, e *request.Execution) error

// Process calls f.
func (f ResponseInterceptorFunc) Process(resp *request.Response, req *request.Request, e *request.Execution) error {
	return f(resp, req, e)
}

// A Chain is an immutable, ordered pair of interceptor pipelines. It
// is assembled once and then shared by every call passing through the
// protocol stage.
type Chain struct {
	requests  []RequestInterceptor
	responses []ResponseInterceptor
}

// NewChain copies the given pipelines into a Chain.
func NewChain(requests []RequestInterceptor, responses []ResponseInterceptor) *Chain {
	c := &Chain{
		requests:  make([]RequestInterceptor, len(requests)),
		responses: make([]ResponseInterceptor, len(responses)),
	}
	copy(c.requests, requests)
	copy(c.responses, responses)
	return c
}

// ProcessRequest runs the request pipeline in order, then validates
// that the headers the interceptors produced are well-formed field
// names and values. The first failure stops the pipeline.
func (c *Chain) ProcessRequest(req *request.Request, e *request.Execution) error {
	for _, itcp := range c.requests {
		if err := itcp.Process(req, e); err != nil {
			return err
		}
	}
	return validateHeader(req)
}

// ProcessResponse runs the response pipeline in order. The first
// failure stops the pipeline.
func (c *Chain) ProcessResponse(resp *request.Response, req *request.Request, e *request.Execution) error {
	for _, itcp := range c.responses {
		if err := itcp.Process(resp, req, e); err != nil {
			return err
		}
	}
	return nil
}

func validateHeader(req *request.Request) error {
	for name, values := range req.Header {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("relay/intercept: invalid header field name %q", name)
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("relay/intercept: invalid value for header field %q", name)
			}
		}
	}
	return nil
}
