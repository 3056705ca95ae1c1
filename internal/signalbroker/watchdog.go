// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
)

// Watch monitors sigCh until it is closed or ctx is done.
// The second signal of a kind cancels the context through cancel.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "received second signal, terminating running commands", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "received signal, waiting for running commands; repeat to terminate them", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
