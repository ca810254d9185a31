// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by Categorize.
//
// The category Not means a retry after encountering this error is very
// unlikely to succeed. Every other category means a later attempt has
// some prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may
	// succeed on a future attempt by waiting longer.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() method that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED). Refusal is classified as transient because
	// it commonly happens while the service on the remote host is
	// starting or restarting and not yet listening on its port.
	ConnRefused
	// ConnReset indicates the remote host sent an RST on a previously
	// active connection (POSIX ECONNRESET). Resets are typical of a
	// remote peer or load balancer going down mid-exchange and tend to
	// indicate a high probability of success on retry.
	ConnReset
	// BrokenPipe indicates a write on a connection the peer had
	// already closed (POSIX EPIPE). Like a reset, it usually means the
	// pooled connection went stale, and a fresh connection is likely
	// to succeed.
	BrokenPipe
)

// Categorize returns the transience category of the given error. A nil
// error, and an error that is not transient from the perspective of
// completing an HTTP exchange, both produce Not.
//
// Categorize inspects wrapped cause errors contained within err, not
// just err itself. It never consults a Temporary() method, as the
// semantics of Temporary() are not well defined.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.EPIPE:
			return BrokenPipe
		}
	}

	return Not
}

// Is reports whether the error belongs to any transient category.
func Is(err error) bool {
	return Categorize(err) != Not
}
