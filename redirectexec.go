// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"go.uber.org/zap"

	"github.com/gorelay/relay/redirect"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// NewRedirectExecutor constructs the stage that follows redirect
// responses. Each hop executes a fresh clone carrying the ORIGINAL
// request's headers and configuration, so headers added by protocol
// interceptors on one hop never leak onto the next. The hop count is
// bounded by the request's redirect ceiling, a hop to a new route is
// replanned through the planner, and authentication state is reset when
// the hop leaves the host it was negotiated with.
//
// logger may be nil for no logging.
func NewRedirectExecutor(next Executor, strategy redirect.Strategy, planner RoutePlanner, logger *zap.Logger) Executor {
	if next == nil {
		panic("relay: nil executor")
	}
	if strategy == nil {
		panic("relay: nil redirect strategy")
	}
	if planner == nil {
		panic("relay: nil route planner")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redirectExecutor{next: next, strategy: strategy, planner: planner, logger: logger}
}

type redirectExecutor struct {
	next     Executor
	strategy redirect.Strategy
	planner  RoutePlanner
	logger   *zap.Logger
}

func (x *redirectExecutor) Execute(rt *route.Route, req *request.Request, e *request.Execution) (*request.Response, error) {
	// orig is the caller's request: every hop restarts from its headers
	// and configuration, never from the previous hop's. The first hop
	// runs on a copy too, so interceptor header writes never land on
	// the caller's request.
	orig := req
	curr := req.WithContext(req.Context())
	curr.Header = request.CloneHeader(orig.Header)
	currRoute := rt

	for {
		if e.Aborted() {
			return nil, ErrAborted
		}
		e.Route = currRoute
		resp, err := x.next.Execute(currRoute, curr, e)
		if err != nil {
			return nil, err
		}
		if orig.Config.DisableRedirects || !x.strategy.Redirected(curr, resp, e) {
			return resp, nil
		}

		// The ceiling is checked before the count moves, so a ceiling of
		// N permits exactly N hops and fails on hop N+1.
		if limit := orig.Config.MaxRedirectsOrDefault(); e.Redirects >= limit {
			abandonBody(resp)
			return nil, &RedirectError{Limit: limit}
		}
		e.Redirects++

		next, err := x.strategy.Redirect(curr, resp, e)
		if err != nil {
			abandonBody(resp)
			return nil, NewProtocolError("cannot build redirect request", err)
		}
		next.Header = request.CloneHeader(orig.Header)
		next.Config = orig.Config

		target, ok := route.HostFromURL(next.URL)
		if !ok {
			abandonBody(resp)
			return nil, NewProtocolError("redirect URI does not specify a valid host name", nil)
		}
		nextRoute, err := x.planner.DetermineRoute(target, next, e)
		if err != nil {
			abandonBody(resp)
			return nil, err
		}

		x.resetAuth(e, currRoute, nextRoute)

		// The redirect response itself is done with: drain it so its
		// connection can go back to the pool before the next hop needs
		// one.
		if cerr := resp.Consume(); cerr != nil {
			x.logger.Debug("error consuming redirect response", zap.Error(cerr))
		}

		x.logger.Debug("following redirect",
			zap.Int("status", resp.StatusCode),
			zap.Int("hop", e.Redirects),
			zap.String("location", next.URL.String()))

		curr = next
		currRoute = nextRoute
	}
}

// resetAuth clears negotiation state that does not carry across the
// hop. Target credentials are host-scoped: leaving the host discards
// them. Proxy credentials survive a proxy change unless the negotiated
// scheme authenticated the connection itself.
func (x *redirectExecutor) resetAuth(e *request.Execution, from, to *route.Route) {
	if !from.Target().Equal(to.Target()) && e.TargetAuth != nil {
		x.logger.Debug("resetting target auth state",
			zap.String("from", from.Target().String()),
			zap.String("to", to.Target().String()))
		e.TargetAuth.Reset()
	}

	fromProxy, fromOK := from.Proxy()
	toProxy, toOK := to.Proxy()
	if fromOK != toOK || (fromOK && !fromProxy.Equal(toProxy)) {
		if e.ProxyAuth != nil {
			scheme := e.ProxyAuth.Scheme()
			if scheme != nil && scheme.ConnectionBased() {
				x.logger.Debug("resetting proxy auth state",
					zap.String("scheme", scheme.Name()))
				e.ProxyAuth.Reset()
			}
		}
	}
}
