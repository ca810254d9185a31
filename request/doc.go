// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the data model shared by every stage of the
execution chain: the in-flight Request, the Response flowing back up,
and the per-call Execution state that rides alongside them.

A Request is mutable while in flight, but internal stages never mutate
the caller's original: the redirect stage clones a fresh Request per
hop and copies the original's headers and configuration onto it. For
those familiar with the Go standard HTTP library, a Request looks like
a stripped-down http.Request with server-side fields removed and the
body replaced by a pre-buffered []byte (repeatable, safe to retry) or a
one-shot Stream (never retried).

Create a request to hand to the execution chain:

	req, err := request.New("GET", "https://example.com", nil)
	...
	resp, err := client.Do(req)
	...

A request may be assigned a context to allow a deadline to be set on
the entire execution, and to allow cancellation at any time:

	req, err := request.NewWithContext(ctx, "POST", "https://example.com/upload", body)
	...

The Execution type holds the state scoped to one top-level call: the
original request, the current route, the target and proxy
authentication states, and the attempt and redirect counters. You will
typically not allocate Execution instances yourself; the client facade
creates one per call and the stages populate it as they go.
*/
package request
