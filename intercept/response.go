// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gorelay/relay/request"
)

// ProcessCookies returns an interceptor that extracts Set-Cookie
// headers from the response into the jar, keyed by the URL of the
// request the response answers.
func ProcessCookies(jar http.CookieJar) ResponseInterceptor {
	return ResponseInterceptorFunc(func(resp *request.Response, req *request.Request, _ *request.Execution) error {
		if jar == nil || req.URL == nil {
			return nil
		}
		// net/http only exposes Set-Cookie parsing through
		// Response.Cookies.
		cookies := (&http.Response{Header: resp.Header}).Cookies()
		if len(cookies) > 0 {
			jar.SetCookies(req.URL, cookies)
		}
		return nil
	})
}

// ContentDecoding returns an interceptor that transparently unwraps a
// gzip-encoded response body. The gzip reader is initialized lazily on
// first read, and closing the decoded body still closes the underlying
// entity, so the connection lifecycle attached to it is preserved.
func ContentDecoding() ResponseInterceptor {
	return ResponseInterceptorFunc(func(resp *request.Response, _ *request.Request, _ *request.Execution) error {
		if resp.Body == nil {
			return nil
		}
		if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
			return nil
		}
		resp.Body = &gzipBody{inner: resp.Body}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		return nil
	})
}

// gzipBody defers gzip.NewReader until the first Read, because the
// constructor consumes the stream header and the body may never be
// read at all.
type gzipBody struct {
	inner io.ReadCloser
	gz    *gzip.Reader
	err   error
}

func (b *gzipBody) Read(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if b.gz == nil {
		b.gz, b.err = gzip.NewReader(b.inner)
		if b.err != nil {
			return 0, b.err
		}
	}
	return b.gz.Read(p)
}

func (b *gzipBody) Close() error {
	var gzErr error
	if b.gz != nil {
		gzErr = b.gz.Close()
	}
	if err := b.inner.Close(); err != nil {
		return err
	}
	return gzErr
}

// Abort forwards consumer cancellation to the entity underneath, so
// abandoning a compressed body still severs its connection instead of
// draining the remainder. Falls back to Close when the entity has no
// abort capability.
func (b *gzipBody) Abort() error {
	if a, ok := b.inner.(interface{ Abort() error }); ok {
		return a.Abort()
	}
	return b.inner.Close()
}
