// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package route models the path a request takes to reach its target:
// zero or more proxy hops followed by the target host. Routes are
// immutable once constructed. Planning, which route to use for a given
// target host, happens a level up in the root package.
package route
