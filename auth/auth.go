// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth carries authentication negotiation state across the
// hops of a request execution. It does not compute challenges or
// responses; schemes are external collaborators described only by the
// Scheme interface. What the package owns is the mutable per-call
// state (one instance for the target, one for the proxy) and a
// per-host cache used to prime that state before the first challenge.
package auth

import (
	"sync"
)

// A Scheme describes an authentication scheme negotiated with a target
// or proxy host. Implementations compute challenges and credentials
// elsewhere; the execution pipeline only needs the scheme's identity
// and whether its state is tied to the underlying connection.
//
// Implementations of Scheme must be safe for concurrent use by
// multiple goroutines.
type Scheme interface {
	// Name returns the scheme name, for example "basic" or "ntlm".
	Name() string
	// ConnectionBased reports whether the scheme authenticates the
	// connection rather than individual requests. Connection-based
	// proxy schemes must be renegotiated when a redirect changes the
	// proxy, so the redirect stage resets their state.
	ConnectionBased() bool
}

// Credentials is a username/password pair supplied to a scheme.
type Credentials struct {
	Username string
	Password string
}

// Basic is the stateless HTTP Basic scheme. It is not connection
// based: each request carries the full authorization.
var Basic Scheme = basicScheme{}

type basicScheme struct{}

func (basicScheme) Name() string          { return "basic" }
func (basicScheme) ConnectionBased() bool { return false }

// A State holds the authentication negotiation progress against one
// host (target or proxy) for the duration of a single top-level
// execution.
//
// A State is created once per execution and persists across redirects
// to the same host. When a redirect changes the host, the redirect
// stage calls Reset on the existing instance rather than replacing it,
// so every component holding a reference to the State observes the
// reset.
//
// State is not safe for concurrent use; within one execution it is
// only touched sequentially.
type State struct {
	scheme Scheme
	creds  *Credentials
}

// Scheme returns the scheme currently in use, or nil before any
// negotiation has happened.
func (s *State) Scheme() Scheme {
	return s.scheme
}

// Credentials returns the credentials selected for the current scheme,
// or nil.
func (s *State) Credentials() *Credentials {
	return s.creds
}

// Update records the scheme and credentials selected for the host.
func (s *State) Update(scheme Scheme, creds *Credentials) {
	s.scheme = scheme
	s.creds = creds
}

// Reset clears the negotiation state in place. The State instance
// itself remains valid and shared.
func (s *State) Reset() {
	s.scheme = nil
	s.creds = nil
}

// A Cache remembers which scheme a host accepted so later executions
// can authenticate preemptively instead of waiting for a challenge.
// The auth-cache interceptor consults it before the request is sent.
//
// Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu      sync.RWMutex
	schemes map[string]Scheme
}

// NewCache returns an empty scheme cache.
func NewCache() *Cache {
	return &Cache{schemes: make(map[string]Scheme)}
}

// Put records the scheme accepted by the host with the given identity
// key (normally route.Host.String()).
func (c *Cache) Put(hostKey string, scheme Scheme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemes[hostKey] = scheme
}

// Get returns the cached scheme for the host, or nil.
func (c *Cache) Get(hostKey string) Scheme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schemes[hostKey]
}

// Remove drops the cached scheme for the host, typically after the
// host rejected preemptive authentication.
func (c *Cache) Remove(hostKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.schemes, hostKey)
}
