// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport-level errors by their
// prospect of going away on a later attempt. The retry stage's default
// policy and the backoff stage's default strategy both build on
// Categorize, but the package has no opinion on what to do about a
// transient error; that is policy.
package transient
