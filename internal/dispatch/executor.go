// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import "context"

var _ Executor = ExecutorFunc(nil)

// Executor runs a single command. The dispatcher does not act on the returned error.
type Executor interface {
	Execute(ctx context.Context, command string) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, command string) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, command string) error {
	return f(ctx, command)
}
