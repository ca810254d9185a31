// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"io"
	"sync"

	"github.com/gorelay/relay/conn"
	"github.com/gorelay/relay/request"
)

// A BodyAborter is implemented by response bodies whose abandonment
// must be signalled explicitly. Calling Abort abandons the remaining
// body and discards the underlying connection instead of draining it
// for reuse.
type BodyAborter interface {
	Abort() error
}

// managedBody ties a response body stream to the lifecycle of the
// pooled connection it reads from. From the moment the main execution
// stage hands the connection over, the managedBody is the connection's
// sole owner: exactly one of release or abort happens, exactly once,
// no matter how the consumer finishes with the stream.
//
// Three terminal events end the ownership:
//
//   - end of data reached while reading: drain any remainder, close
//     the inner stream, and release the connection if it is still
//     eligible for reuse (abort it otherwise);
//
//   - Close before end of data: drain and close; a transport error
//     during closure propagates unless the execution was externally
//     aborted (the abort, not a genuine fault, caused it);
//
//   - Abort: the consumer signalled cancellation; the connection is
//     aborted unconditionally, never released.
//
// After the first terminal event all later events are no-ops.
//
// A managedBody serves a single consumer and is not safe for
// concurrent reads, but its state transition is guarded so a racing
// Close/Abort cannot double-finalize the connection.
type managedBody struct {
	inner   io.ReadCloser
	aborter *request.Aborter
	done    func() // called once when ownership ends; may be nil

	mu        sync.Mutex
	conn      conn.Conn
	finalized bool
}

var _ io.ReadCloser = (*managedBody)(nil)
var _ BodyAborter = (*managedBody)(nil)

func newManagedBody(inner io.ReadCloser, c conn.Conn, aborter *request.Aborter, done func()) *managedBody {
	return &managedBody{inner: inner, conn: c, aborter: aborter, done: done}
}

func (b *managedBody) Read(p []byte) (int, error) {
	b.mu.Lock()
	if b.finalized {
		b.mu.Unlock()
		return 0, io.EOF
	}
	b.mu.Unlock()

	n, err := b.inner.Read(p)
	if err == io.EOF {
		if ferr := b.eofDetected(); ferr != nil {
			return n, ferr
		}
	}
	return n, err
}

// eofDetected handles the consumer reading the stream to completion.
// Closing the inner stream may still perform cleanup work, such as
// reading trailers after the body.
func (b *managedBody) eofDetected() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return nil
	}
	b.finalized = true
	defer b.cleanupLocked()

	if err := b.inner.Close(); err != nil {
		return err
	}
	b.releaseLocked()
	return nil
}

// Close handles the consumer finishing with the stream before end of
// data. Closing drains the remainder so the connection can go back to
// the pool in a clean state.
func (b *managedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return nil
	}
	b.finalized = true
	defer b.cleanupLocked()

	aborted := b.aborter.Aborted()
	_, drainErr := io.Copy(io.Discard, b.inner)
	closeErr := b.inner.Close()
	if drainErr == nil {
		drainErr = closeErr
	}
	if drainErr != nil {
		if aborted {
			return nil
		}
		return drainErr
	}
	b.releaseLocked()
	return nil
}

// Abort handles the consumer signalling cancellation: the connection
// is discarded without any attempt to drain or reuse it.
func (b *managedBody) Abort() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return nil
	}
	b.finalized = true
	defer b.cleanupLocked()

	_ = b.inner.Close()
	return nil
}

// releaseLocked releases the connection if it is still eligible for
// reuse. On any release failure the connection stays owned and
// cleanupLocked aborts it.
func (b *managedBody) releaseLocked() {
	if b.conn == nil {
		return
	}
	if b.conn.IsMarkedReusable() && b.conn.IsOpen() {
		if err := b.conn.Release(); err == nil {
			b.conn = nil
		}
	}
}

// cleanupLocked ends the checkout if release did not: whatever
// connection is still held gets aborted. It also fires the done hook
// exactly once.
func (b *managedBody) cleanupLocked() {
	if b.conn != nil {
		_ = b.conn.Abort()
		b.conn = nil
	}
	if b.done != nil {
		b.done()
		b.done = nil
	}
}
