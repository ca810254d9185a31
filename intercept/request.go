// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorelay/relay/auth"
	"github.com/gorelay/relay/request"
	"github.com/gorelay/relay/route"
)

// DefaultHeaders returns an interceptor that adds every header from h
// that the request does not already carry. Values already present on
// the request win.
func DefaultHeaders(h http.Header) RequestInterceptor {
	defaults := make(http.Header, len(h))
	for k, vv := range h {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		defaults[k] = vv2
	}
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		for k, vv := range defaults {
			if _, present := req.Header[k]; !present {
				req.Header[k] = vv
			}
		}
		return nil
	})
}

// ContentFraming returns an interceptor that sets the message framing
// headers from the request body: Content-Length for a buffered body,
// chunked Transfer-Encoding for a one-shot stream. A request arriving
// with either header preset is a protocol violation; framing belongs
// to the pipeline, not the caller.
func ContentFraming() RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if req.Header.Get("Content-Length") != "" {
			return errors.New("relay/intercept: Content-Length header already present")
		}
		if req.Header.Get("Transfer-Encoding") != "" {
			return errors.New("relay/intercept: Transfer-Encoding header already present")
		}
		switch {
		case req.Stream != nil:
			req.Header.Set("Transfer-Encoding", "chunked")
		case len(req.Body) > 0:
			req.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))
		}
		return nil
	})
}

// TargetHost returns an interceptor that sets the Host header from the
// request's host override or its URL. A request whose URL names no
// host is rejected.
func TargetHost() RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		host := req.Host
		if host == "" {
			if req.URL == nil || req.URL.Host == "" {
				return errors.New("relay/intercept: target host missing")
			}
			host = req.URL.Host
		}
		req.Header.Set("Host", host)
		return nil
	})
}

// ConnControl returns an interceptor that sets the Connection header
// from the request's Close flag.
func ConnControl() RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if req.Close {
			req.Header.Set("Connection", "close")
		} else if req.Header.Get("Connection") == "" {
			req.Header.Set("Connection", "keep-alive")
		}
		return nil
	})
}

// UserAgent returns an interceptor that sets the User-Agent header if
// the request does not already carry one.
func UserAgent(agent string) RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if agent != "" && req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", agent)
		}
		return nil
	})
}

// ExpectContinue returns an interceptor that asks the server for an
// interim 100 Continue before the body is sent, for requests that
// carry a body.
func ExpectContinue() RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if req.HasBody() && req.Header.Get("Expect") == "" {
			req.Header.Set("Expect", "100-continue")
		}
		return nil
	})
}

// AddCookies returns an interceptor that injects the jar's cookies for
// the request URL. Cookie parsing and storage policy belong to the
// jar; the interceptor only moves matching cookies onto the request.
func AddCookies(jar http.CookieJar) RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if jar == nil || req.URL == nil {
			return nil
		}
		for _, c := range jar.Cookies(req.URL) {
			req.AddCookie(c)
		}
		return nil
	})
}

// AcceptEncoding returns an interceptor that advertises gzip support
// unless the request already negotiates its own encodings.
func AcceptEncoding() RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, _ *request.Execution) error {
		if req.Header.Get("Accept-Encoding") == "" {
			req.Header.Set("Accept-Encoding", "gzip")
		}
		return nil
	})
}

// AuthCache returns an interceptor that primes the execution's
// authentication states from previously accepted schemes, so a request
// to a known host authenticates preemptively instead of waiting for a
// challenge. States already holding a scheme are left alone.
func AuthCache(cache *auth.Cache) RequestInterceptor {
	return RequestInterceptorFunc(func(req *request.Request, e *request.Execution) error {
		if cache == nil {
			return nil
		}
		e.SetupAuth()
		if e.TargetAuth.Scheme() == nil {
			if target, ok := targetHost(req, e); ok {
				if s := cache.Get(target.String()); s != nil {
					e.TargetAuth.Update(s, nil)
				}
			}
		}
		if e.ProxyAuth.Scheme() == nil && e.Route != nil {
			if proxy, ok := e.Route.Proxy(); ok {
				if s := cache.Get(proxy.String()); s != nil {
					e.ProxyAuth.Update(s, nil)
				}
			}
		}
		return nil
	})
}

func targetHost(req *request.Request, e *request.Execution) (route.Host, bool) {
	if e.Route != nil {
		return e.Route.Target(), true
	}
	return route.HostFromURL(req.URL)
}
