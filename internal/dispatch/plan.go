// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkerCount is returned when the requested number of workers is not positive.
var ErrInvalidWorkerCount = errors.New("worker count must be greater than zero")

// Span is a contiguous range of command indexes assigned to one worker.
type Span struct {
	Start int // Index of the first command
	Len   int // Number of commands
}

// End returns the index one past the last command in the span.
func (s Span) End() int {
	return s.Start + s.Len
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End())
}

// EffectiveWorkers returns the number of workers used for n commands when
// requested workers were asked for. It is min(requested, n).
func EffectiveWorkers(n, requested int) int {
	return min(requested, n)
}

// Plan splits n commands into min(workers, n) contiguous spans.
// Every span but the last holds n/k commands, the last one also takes the n%k leftover.
// The spans cover [0, n) exactly once. Zero commands give an empty plan.
func Plan(n, workers int) ([]Span, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, workers)
	}

	if n <= 0 {
		return nil, nil
	}

	k := EffectiveWorkers(n, workers)
	division := n / k
	leftover := n % k

	spans := make([]Span, k)
	for i := range k - 1 {
		spans[i] = Span{Start: i * division, Len: division}
	}

	spans[k-1] = Span{Start: (k - 1) * division, Len: division + leftover}

	return spans, nil
}
