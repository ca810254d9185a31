// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorelay/relay/request"
)

// A ProtocolError reports an unrecoverable HTTP protocol violation:
// a malformed redirect target, a missing host, an interceptor
// rejecting the message. Protocol failures are never retried and never
// trigger backoff-by-error; they surface to the caller as-is.
type ProtocolError struct {
	msg string
	err error
}

// NewProtocolError wraps err as a protocol failure with a description.
func NewProtocolError(msg string, err error) *ProtocolError {
	return &ProtocolError{msg: msg, err: err}
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.err == nil {
		return "relay: " + e.msg
	}
	if e.msg == "" {
		return "relay: " + e.err.Error()
	}
	return "relay: " + e.msg + ": " + e.err.Error()
}

// Unwrap returns the wrapped cause, if any.
func (e *ProtocolError) Unwrap() error {
	return e.err
}

// IsProtocol reports whether err is, or wraps, a protocol failure.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// A RedirectError reports that a redirect chain exceeded the
// configured maximum number of hops.
type RedirectError struct {
	// Limit is the redirect ceiling that was exceeded.
	Limit int
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return fmt.Sprintf("relay: maximum redirects (%d) exceeded", e.Limit)
}

// IsRedirectLimit reports whether err is, or wraps, a redirect-limit
// failure.
func IsRedirectLimit(err error) bool {
	var re *RedirectError
	return errors.As(err, &re)
}

// ErrAborted is the sentinel for executions cancelled through the
// request's Aborter. During cleanup an abort suppresses subsequent
// transport errors, but to the caller it is fatal.
var ErrAborted = errors.New("relay: request aborted")

// IsAborted reports whether err is, or wraps, ErrAborted.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// urlErrorWrap presents terminal failures the way the standard HTTP
// client does, as a *url.Error carrying the method and URL.
func urlErrorWrap(req *request.Request, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*url.Error); ok {
		return err
	}
	u := ""
	if req.URL != nil {
		u = req.URL.String()
	}
	return &url.Error{
		Op:  urlErrorOp(req.Method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
