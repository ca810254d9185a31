// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"io"
	"net/http"
)

// A Response is the result flowing back up the execution chain: a
// status line, headers, and an optional body entity.
//
// When the response was read from a pooled connection, the main
// execution stage wraps Body so that its consumption, closure, or
// abandonment releases or aborts the connection. Callers must either
// read Body to completion and close it, or close it early; both paths
// return the connection to a safe state.
type Response struct {
	// StatusCode is the numeric response status, e.g. 200.
	StatusCode int

	// Status is the full status line text, e.g. "200 OK". It may be
	// empty if the transport did not supply one.
	Status string

	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string

	// Header contains the response header fields.
	Header http.Header

	// Body is the response body entity, or nil if the response has no
	// body. It is the caller's responsibility to close a non-nil Body.
	Body io.ReadCloser

	// ContentLength records the length advertised by the response, or
	// -1 when unknown.
	ContentLength int64
}

// HasBody reports whether the response carries a body entity.
func (r *Response) HasBody() bool {
	return r.Body != nil
}

// Consume reads the remainder of the response body and closes it,
// returning the first error encountered. It is a no-op on a response
// without a body. The redirect stage uses Consume to finish with an
// intermediate response before following its redirect.
func (r *Response) Consume() error {
	if r.Body == nil {
		return nil
	}
	_, readErr := io.Copy(io.Discard, r.Body)
	closeErr := r.Body.Close()
	if readErr != nil {
		return readErr
	}
	return closeErr
}
