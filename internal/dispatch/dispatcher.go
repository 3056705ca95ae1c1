// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
)

// ErrNilExecutor is returned when a Dispatcher is created without an Executor.
var ErrNilExecutor = errors.New("executor must not be nil")

// Dispatcher runs a CommandList over a static set of workers.
type Dispatcher struct {
	exec Executor
}

// New creates a Dispatcher that runs every command through exec.
func New(exec Executor) (*Dispatcher, error) {
	if exec == nil {
		return nil, ErrNilExecutor
	}

	return &Dispatcher{exec: exec}, nil
}

// Dispatch runs every command in commands exactly once using up to workers goroutines
// and returns when all of them have finished.
//
// The only error is ErrInvalidWorkerCount. When more workers are requested than there
// are commands the count is reduced to the number of commands and a warning is logged.
// An empty list returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, commands CommandList, workers int) error {
	logger := ctxlog.Logger(ctx).With("component", "dispatcher")

	spans, err := Plan(commands.Len(), workers)
	if err != nil {
		return err
	}

	if len(spans) == 0 {
		logger.Debug("no commands to run")
		return nil
	}

	if len(spans) < workers {
		logger.Warn("adjusting thread count to number of commands",
			"requested", workers,
			"commands", commands.Len())
	}

	logger.Debug("dispatching commands", "commands", commands.Len(), "workers", len(spans))

	wg := &sync.WaitGroup{}

	for id, span := range spans {
		wg.Add(1)

		go func(id int, span Span) {
			defer wg.Done()

			d.work(ctx, id, commands, span)
		}(id, span)
	}

	wg.Wait()

	logger.Debug("all workers finished", "workers", len(spans))

	return nil
}

// work runs the commands in span sequentially. Errors from the executor are logged only.
func (d *Dispatcher) work(ctx context.Context, id int, commands CommandList, span Span) {
	logger := ctxlog.Logger(ctx).With("worker", id, "span", span.String())
	logger.Debug("worker started")

	for i, command := range commands.Span(span) {
		if err := d.exec.Execute(ctx, command); err != nil {
			logger.Debug("command returned an error", "index", i, "command", command, "error", err)
		}
	}

	logger.Debug("worker finished")
}
