// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package relay implements the client-side execution pipeline of an HTTP
client: the machinery that turns a user-issued request into a fully
processed response while transparently handling route planning,
protocol interceptors, retries, redirects, per-route connection
backoff, and pooled-connection lifecycle.

The pipeline is a chain of stages, each wrapping the next, all
satisfying the single Executor contract: execute a request against a
route, carrying per-call execution state, and return a response. From
the outside in the chain is:

	backoff → redirect → retry → protocol → main

The backoff stage observes outcomes and throttles distressed routes;
the redirect stage follows redirects, replanning the route and
resetting authentication state as hosts change; the retry stage
re-issues idempotent requests after transient transport failures; the
protocol stage applies the ordered interceptor pipelines; and the main
stage checks a connection out of the pool, performs the exchange, and
ties the connection's return to the response body's lifecycle.

Create a Client to begin making requests:

	client := &relay.Client{
		Pool:      pool,      // conn.Pool implementation
		Transport: transport, // conn.RoundTripper implementation
	}
	resp, err := client.Get(ctx, "https://www.example.com")
	...

The wire transport, the connection pool's internals, TLS, cookie
storage, and authentication scheme computation are external
collaborators behind the interfaces in packages conn and auth; this
package coordinates them but implements none of them.

Every stage is stateless after construction, so one Client (one chain)
serves any number of concurrent calls. State scoped to a call lives in
a request.Execution created per top-level invocation.
*/
package relay
