// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorelay/relay/conn"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// fakeConn records checkout lifecycle calls.
type fakeConn struct {
	open       bool
	reusable   bool
	released   int
	aborted    int
	releaseErr error
}

func newFakeConn() *fakeConn { return &fakeConn{open: true} }

func (c *fakeConn) IsOpen() bool           { return c.open }
func (c *fakeConn) MarkReusable()          { c.reusable = true }
func (c *fakeConn) UnmarkReusable()        { c.reusable = false }
func (c *fakeConn) IsMarkedReusable() bool { return c.reusable }

func (c *fakeConn) Release() error {
	if c.releaseErr != nil {
		return c.releaseErr
	}
	c.released++
	c.open = false
	return nil
}

func (c *fakeConn) Abort() error {
	c.aborted++
	c.open = false
	return nil
}

// finished reports whether the checkout ended with exactly one
// terminal call.
func (c *fakeConn) finished() bool { return c.released+c.aborted == 1 }

// fakePool hands out a fresh fakeConn per acquire and remembers them
// all, in order.
type fakePool struct {
	err      error
	conns    []*fakeConn
	routes   []*route.Route
	timeouts []time.Duration
}

func (p *fakePool) Acquire(_ context.Context, r *route.Route, timeout time.Duration) (conn.Conn, error) {
	if p.err != nil {
		return nil, p.err
	}
	c := newFakeConn()
	p.conns = append(p.conns, c)
	p.routes = append(p.routes, r)
	p.timeouts = append(p.timeouts, timeout)
	return c, nil
}

// exchange is one scripted transport outcome.
type exchange struct {
	resp *request.Response
	err  error
}

// fakeTransport replays a script of outcomes and records what it was
// sent.
type fakeTransport struct {
	script []exchange
	calls  int
	reqs   []*request.Request
	ctxs   []context.Context
}

func (tr *fakeTransport) Send(ctx context.Context, _ conn.Conn, req *request.Request) (*request.Response, error) {
	tr.calls++
	tr.reqs = append(tr.reqs, req)
	tr.ctxs = append(tr.ctxs, ctx)
	if len(tr.script) == 0 {
		return textResponse(200, ""), nil
	}
	x := tr.script[0]
	tr.script = tr.script[1:]
	return x.resp, x.err
}

// trackedBody is a response body that records closure.
type trackedBody struct {
	*bytes.Reader
	closed   bool
	closeErr error
}

func newTrackedBody(s string) *trackedBody {
	return &trackedBody{Reader: bytes.NewReader([]byte(s))}
}

func (b *trackedBody) Close() error {
	b.closed = true
	return b.closeErr
}

// textResponse builds a minimal HTTP/1.1 response; an empty body means
// no body entity at all.
func textResponse(status int, body string) *request.Response {
	resp := &request.Response{
		StatusCode: status,
		Proto:      "HTTP/1.1",
		Header:     make(http.Header),
	}
	if body != "" {
		resp.Body = newTrackedBody(body)
		resp.ContentLength = int64(len(body))
	}
	return resp
}

func redirectTo(location string) *request.Response {
	resp := textResponse(302, "moved")
	resp.Header.Set("Location", location)
	return resp
}

// scriptedExecutor is a stand-in next stage replaying outcomes.
type scriptedExecutor struct {
	script []exchange
	calls  int
	routes []*route.Route
	reqs   []*request.Request
	onCall func(req *request.Request, e *request.Execution)
}

func (x *scriptedExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	x.calls++
	x.routes = append(x.routes, rt)
	x.reqs = append(x.reqs, req)
	if x.onCall != nil {
		x.onCall(req, e)
	}
	if len(x.script) == 0 {
		return textResponse(200, ""), nil
	}
	out := x.script[0]
	x.script = x.script[1:]
	return out.resp, out.err
}

func mustRequest(method, url string) *request.Request {
	req, err := request.New(method, url, nil)
	if err != nil {
		panic(err)
	}
	return req
}

func testRoute(name string) *route.Route {
	return route.Direct(route.Host{Scheme: "http", Name: name})
}

var _ io.ReadCloser = (*trackedBody)(nil)
