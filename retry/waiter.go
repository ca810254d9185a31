// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gorelay/relay/request"
)

// A Waiter specifies how long to wait before re-issuing a failed
// request attempt. The retry stage will not call the Waiter if the
// policy's Decider declined the retry.
//
// Implementations of Waiter must be safe for concurrent use by
// multiple goroutines.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter is the default retry wait policy: a jittered
// exponential backoff with a base wait of 50 milliseconds and a
// maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now())

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula with optional jitter, following the "Full Jitter" approach
// described in:
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// Parameters base and max control the exponential calculation of the
// ceiling:
//
//	ceil := min(base * 2**attempt, max)
//
// Base and max must be positive, and max must be at least base.
//
// Parameter jitter selects a random number between 0 and ceil. Pass
// nil for no jitter (the waiter returns ceil each time), or a seed
// value (time.Time, int, or int64), or a rand.Source, or a *rand.Rand.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("relay/retry: base must be positive")
	}
	if max < base {
		panic("relay/retry: max must be at least base")
	}
	return &expWaiter{
		base: base,
		max:  max,
		rnd:  newJitterRand(jitter),
	}
}

type expWaiter struct {
	base time.Duration
	max  time.Duration
	rnd  *rand.Rand
	mu   sync.Mutex
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	// Doubling past 62 attempts, or past the point where the shift
	// wraps, pins the ceiling at max.
	ceil := w.max
	if shift := uint(e.Attempt); shift < 63 {
		if c := w.base << shift; c > 0 && c>>shift == w.base && c < w.max {
			ceil = c
		}
	}
	if w.rnd == nil {
		return ceil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Duration(w.rnd.Int63n(int64(ceil)))
}

// newJitterRand interprets the jitter argument of NewExpWaiter. A nil
// result means no jitter at all.
func newJitterRand(jitter interface{}) *rand.Rand {
	switch j := jitter.(type) {
	case nil:
		return nil
	case *rand.Rand:
		if j == nil {
			panic("relay/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		return rand.New(j)
	case time.Time:
		return rand.New(rand.NewSource(j.UnixNano()))
	case int:
		return rand.New(rand.NewSource(int64(j)))
	case int64:
		return rand.New(rand.NewSource(j))
	}
	panic("relay/retry: invalid jitter type")
}
