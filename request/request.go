// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "relay/request: nil context"

// DefaultMaxRedirects is the redirect ceiling applied when
// Config.MaxRedirects is zero.
const DefaultMaxRedirects = 100

// A Config carries the per-request knobs consulted by the execution
// chain. The zero value is a valid configuration using the defaults
// documented on each field.
type Config struct {
	// MaxRedirects bounds the number of redirect hops the redirect
	// stage will follow. Zero means DefaultMaxRedirects.
	MaxRedirects int

	// DisableRedirects turns off redirect handling for this request:
	// redirect responses are returned to the caller as final.
	DisableRedirects bool

	// ConnRequestTimeout bounds how long the main execution stage will
	// block waiting to check a connection out of the pool. Zero means
	// block as long as the pool (and the request context) allow.
	ConnRequestTimeout time.Duration

	// AttemptTimeout bounds a single send/receive attempt. Zero means
	// no per-attempt deadline beyond the request context.
	AttemptTimeout time.Duration
}

// maxRedirects resolves the zero value to the default ceiling.
func (c Config) maxRedirects() int {
	if c.MaxRedirects > 0 {
		return c.MaxRedirects
	}
	return DefaultMaxRedirects
}

// MaxRedirectsOrDefault returns the effective redirect ceiling.
func (c Config) MaxRedirectsOrDefault() int {
	return c.maxRedirects()
}

// An Aborter is an externally settable cancellation flag attached to a
// Request. Once fired it cannot be cleared.
//
// The entity release watcher consults the flag to decide whether a
// transport error raised while closing a response body should be
// suppressed (the abort, not a genuine fault, caused it). The client
// facade rejects requests whose flag is already set.
//
// Aborter is safe for concurrent use by multiple goroutines.
type Aborter struct {
	fired atomic.Bool
}

// Abort fires the flag.
func (a *Aborter) Abort() {
	a.fired.Store(true)
}

// Aborted reports whether the flag has fired. A nil Aborter reports
// false.
func (a *Aborter) Aborted() bool {
	return a != nil && a.fired.Load()
}

// A Request is the mutable in-flight representation of an HTTP request
// handed to the execution chain.
//
// The field structure loosely mirrors the lower-level http.Request,
// with server-only fields removed and the body simplified: a Request
// body is either a pre-buffered byte slice (repeatable, so the retry
// stage may re-send it) or a one-shot Stream (never retried).
//
// Like http.Request, a Request has a context controlling the whole
// execution; change it by copying the Request with WithContext.
type Request struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.). An
	// empty string means GET.
	Method string

	// URL specifies the URL to access. It must be absolute: the
	// execution chain plans its route from the URL's host.
	URL *urlpkg.URL

	// Header contains the request header fields to send.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty slice
	// means no body, unless Stream is set. A buffered body is
	// repeatable: it can be re-sent on retry without re-reading
	// consumed bytes.
	Body []byte

	// Stream is a one-shot request body. It takes precedence over
	// Body when non-nil. A request with a Stream body is not
	// repeatable and will never be retried.
	Stream io.ReadCloser

	// Host optionally overrides the Host header to send. If empty,
	// URL.Host is used.
	Host string

	// Close stipulates that the connection should not be reused after
	// this exchange.
	Close bool

	// Config carries the per-request execution knobs.
	Config Config

	// Aborter, if non-nil, lets the caller signal cancellation from
	// outside the request context. See Aborter.
	Aborter *Aborter

	// ctx controls the whole execution. Modify only by copying the
	// Request with WithContext.
	ctx context.Context
}

// New wraps NewWithContext using the background context.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser; readers are buffered so the
// resulting body is repeatable. To send a one-shot body, set the
// Stream field directly.
func New(method, url string, body interface{}) (*Request, error) {
	return NewWithContext(context.Background(), method, url, body)
}

// NewWithContext returns a new Request given a method, URL, and
// optional body.
func NewWithContext(ctx context.Context, method, url string, body interface{}) (*Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	// The HTTP method grammar is a token, the same grammar httpguts
	// uses for header field names.
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("relay/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Request{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		Host:   u.Host,
	}, nil
}

// Context returns the request's context. It is never nil; it defaults
// to the background context.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to
// ctx, which must be non-nil.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// Clone returns a deep copy of r suitable for mutation by a later hop
// without touching the original: the URL and headers are copied, the
// context, aborter, and buffered body are shared. A Stream body is NOT
// carried over; one-shot bodies cannot be replayed on a new hop.
func (r *Request) Clone() *Request {
	r2 := new(Request)
	*r2 = *r
	if r.URL != nil {
		u := *r.URL
		r2.URL = &u
	}
	r2.Header = CloneHeader(r.Header)
	r2.Stream = nil
	return r2
}

// Repeatable reports whether the request body, if any, can be re-sent
// without re-reading consumed bytes. Buffered bodies are repeatable;
// Stream bodies are not. The retry stage declines to retry a request
// that is not repeatable.
func (r *Request) Repeatable() bool {
	return r.Stream == nil
}

// HasBody reports whether the request carries a body of either kind.
func (r *Request) HasBody() bool {
	return r.Stream != nil || len(r.Body) > 0
}

// Aborted reports whether the request's aborter has fired. A request
// without an aborter is never aborted by this mechanism.
func (r *Request) Aborted() bool {
	return r.Aborter.Aborted()
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field: all
// cookies are written into the same line, separated by semicolons.
func (r *Request) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := r.Header.Get("Cookie"); h != "" {
		r.Header.Set("Cookie", h+"; "+s)
	} else {
		r.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the request's Authorization header to use HTTP
// Basic Authentication with the provided username and password. The
// username and password are not encrypted.
func (r *Request) SetBasicAuth(username, password string) {
	r.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// basicAuth follows RFC 2617: userid and password separated by a
// single colon, base64 encoded, not URL encoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// CloneHeader returns a deep copy of h. The redirect stage uses it to
// copy the caller's original headers onto each per-hop request.
func CloneHeader(h http.Header) http.Header {
	h2 := make(http.Header, len(h))
	for k, vv := range h {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		h2[k] = vv2
	}
	return h2
}

// hasPort reports whether a string of the form "host", "host:port", or
// "[ipv6::address]:port" includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort strips the empty port in ":port" to "" as mandated
// by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
