// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the retry policy consumed by the execution
// chain's retry stage: a Decider that says whether a failed attempt
// should be re-issued, and a Waiter that says how long to pause before
// re-issuing it. Compose the built-in deciders with DeciderFunc.And
// and DeciderFunc.Or, or implement Decider directly.
package retry
