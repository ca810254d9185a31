// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package redirect decides whether an HTTP response redirects a
// request and, if so, what the follow-up request looks like. The
// execution chain's redirect stage owns the loop, the counting, and
// the route replanning; this package owns only the policy.
package redirect

import (
	"errors"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"

	"github.com/gorelay/relay/request"
)

// A Strategy decides if a response is a redirect for a request, and
// produces the follow-up request for it.
//
// Implementations of Strategy must be safe for concurrent use by
// multiple goroutines.
type Strategy interface {
	// Redirected reports whether resp redirects req.
	Redirected(req *request.Request, resp *request.Response, e *request.Execution) bool

	// Redirect returns the follow-up request. The redirect stage
	// copies the original request's headers and configuration onto the
	// returned request before executing it.
	Redirect(req *request.Request, resp *request.Response, e *request.Execution) (*request.Request, error)
}

// Default is the standard redirect strategy: it follows 301, 302,
// 303, 307, and 308 responses carrying a Location header, redirecting
// only GET and HEAD requests for the ambiguous 301/302 statuses.
//
// Method rewriting follows RFC 7231 and RFC 7538: 303 always rewrites
// to GET (HEAD stays HEAD), 301 and 302 rewrite non-HEAD methods to
// GET, and 307/308 preserve the method and body.
var Default Strategy = strategy{redirectable: func(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead:
		return true
	default:
		return false
	}
}}

// Lax is a variant of Default that additionally follows redirects of
// POST and DELETE requests, matching the loose behavior of most
// browsers.
var Lax Strategy = strategy{redirectable: func(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete:
		return true
	default:
		return false
	}
}}

type strategy struct {
	redirectable func(method string) bool
}

func (s strategy) Redirected(req *request.Request, resp *request.Response, _ *request.Execution) bool {
	if resp == nil || resp.Header.Get("Location") == "" {
		return false
	}
	switch resp.StatusCode {
	case http.StatusSeeOther:
		return true
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return s.redirectable(req.Method)
	default:
		return false
	}
}

func (s strategy) Redirect(req *request.Request, resp *request.Response, _ *request.Execution) (*request.Request, error) {
	loc, err := locationURL(req, resp)
	if err != nil {
		return nil, err
	}

	next := req.Clone()
	next.URL = loc
	next.Host = ""

	switch resp.StatusCode {
	case http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		// Method and body preserved. A one-shot body was consumed by
		// the attempt that got redirected and cannot be replayed.
		if !req.Repeatable() {
			return nil, errors.New("relay/redirect: cannot redirect a request with a one-shot body")
		}
	default:
		// 301, 302, 303: rewrite to GET and drop the body, except HEAD
		// stays HEAD.
		if !strings.EqualFold(req.Method, http.MethodHead) {
			next.Method = http.MethodGet
		}
		next.Body = nil
	}
	return next, nil
}

// locationURL parses the response's Location header and resolves it
// against the request URL, so relative redirects work.
func locationURL(req *request.Request, resp *request.Response) (*urlpkg.URL, error) {
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, errors.New("relay/redirect: response carries no Location header")
	}
	u, err := urlpkg.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("relay/redirect: invalid Location %q: %w", location, err)
	}
	if req.URL != nil {
		u = req.URL.ResolveReference(u)
	}
	return u, nil
}
