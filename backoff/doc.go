// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package backoff throttles routes that show connection-level
// distress. A Strategy classifies failures and responses as
// backoff-worthy; a Manager keeps per-route throttling state and
// reacts to BackOff and Probe signals from the execution chain's
// backoff stage. The AIMD manager implements
// additive-increase/multiplicative-decrease over a pool's per-route
// connection cap.
package backoff
