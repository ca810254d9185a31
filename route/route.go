// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// A Host identifies a single endpoint on a route: a scheme, a host
// name, and a port. The zero value is not a valid host.
//
// Two hosts are considered the same endpoint if and only if their
// scheme, name, and port all match. Host comparison is the basis for
// the redirect stage's authentication reset decisions, so it is
// deliberately identity-based: two URLs differing only in path or query
// map to the same Host.
type Host struct {
	// Scheme is the URL scheme used to talk to the host, normally
	// "http" or "https". It is stored lower case.
	Scheme string
	// Name is the host name or IP address literal, without a port.
	Name string
	// Port is the TCP port. A zero port means the default port for
	// Scheme (80 for http, 443 for https).
	Port int
}

// HostFromURL extracts the target Host from an absolute URL. It returns
// false if the URL does not name a host.
func HostFromURL(u *url.URL) (Host, bool) {
	if u == nil || u.Hostname() == "" {
		return Host{}, false
	}
	port := 0
	if p := u.Port(); p != "" {
		port, _ = strconv.Atoi(p)
	}
	return Host{
		Scheme: strings.ToLower(u.Scheme),
		Name:   strings.ToLower(u.Hostname()),
		Port:   port,
	}, true
}

// Equal reports whether h and other identify the same endpoint. The
// comparison normalizes a zero port to the scheme default, so
// "http://a.example" and "http://a.example:80" compare equal.
func (h Host) Equal(other Host) bool {
	return h.Scheme == other.Scheme &&
		h.Name == other.Name &&
		h.portOrDefault() == other.portOrDefault()
}

// Secure reports whether the host is reached over a TLS scheme.
func (h Host) Secure() bool {
	return h.Scheme == "https"
}

// Addr returns the host in "name:port" form suitable for dialing.
func (h Host) Addr() string {
	return net.JoinHostPort(h.Name, strconv.Itoa(h.portOrDefault()))
}

// String returns the host in "scheme://name:port" form.
func (h Host) String() string {
	return fmt.Sprintf("%s://%s:%d", h.Scheme, h.Name, h.portOrDefault())
}

func (h Host) portOrDefault() int {
	if h.Port != 0 {
		return h.Port
	}
	switch h.Scheme {
	case "https":
		return 443
	default:
		return 80
	}
}

// A Route is the ordered chain of hosts a request traverses: zero or
// more proxies followed by the final target. A Route is immutable once
// constructed and safe for concurrent use.
type Route struct {
	proxies []Host
	target  Host
	secure  bool
}

// New constructs a route to target through the given proxy chain, in
// connection order. The secure flag records whether the final hop is
// protected by TLS; Direct and Via derive it from the target scheme.
func New(target Host, secure bool, proxies ...Host) *Route {
	ps := make([]Host, len(proxies))
	copy(ps, proxies)
	return &Route{proxies: ps, target: target, secure: secure}
}

// Direct constructs a route that connects straight to target.
func Direct(target Host) *Route {
	return New(target, target.Secure())
}

// Via constructs a route to target through a single proxy.
func Via(target Host, proxy Host) *Route {
	return New(target, target.Secure(), proxy)
}

// Target returns the final host of the route.
func (r *Route) Target() Host {
	return r.target
}

// Proxy returns the first proxy hop of the route, if any. The second
// return value is false for a direct route.
func (r *Route) Proxy() (Host, bool) {
	if len(r.proxies) == 0 {
		return Host{}, false
	}
	return r.proxies[0], true
}

// Proxies returns a copy of the proxy chain in connection order.
func (r *Route) Proxies() []Host {
	ps := make([]Host, len(r.proxies))
	copy(ps, r.proxies)
	return ps
}

// HopCount returns the number of hosts on the route, including the
// target. A direct route has one hop.
func (r *Route) HopCount() int {
	return len(r.proxies) + 1
}

// Secure reports whether the route's final hop is protected by TLS.
func (r *Route) Secure() bool {
	return r.secure
}

// Equal reports whether two routes traverse the same host sequence with
// the same security. Route equality is what the backoff manager keys
// its per-route state on.
func (r *Route) Equal(other *Route) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.secure != other.secure || len(r.proxies) != len(other.proxies) {
		return false
	}
	if !r.target.Equal(other.target) {
		return false
	}
	for i := range r.proxies {
		if !r.proxies[i].Equal(other.proxies[i]) {
			return false
		}
	}
	return true
}

// Key returns a stable string identifying the route's host sequence.
// Two routes have the same key if and only if they are Equal.
func (r *Route) Key() string {
	var b strings.Builder
	for _, p := range r.proxies {
		b.WriteString(p.String())
		b.WriteString("->")
	}
	b.WriteString(r.target.String())
	if r.secure {
		b.WriteString("!tls")
	}
	return b.String()
}

// String returns a human-readable description of the route.
func (r *Route) String() string {
	return r.Key()
}
