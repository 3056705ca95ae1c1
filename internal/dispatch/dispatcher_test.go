// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recorder is an Executor that remembers every command it was given.
type recorder struct {
	mu    sync.Mutex
	calls []string
	delay time.Duration
	err   error
}

func (r *recorder) Execute(_ context.Context, command string) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, command)

	return r.err
}

func (r *recorder) counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := make(map[string]int, len(r.calls))
	for _, c := range r.calls {
		m[c]++
	}

	return m
}

func makeCommands(n int) CommandList {
	cmds := make([]string, n)
	for i := range cmds {
		cmds[i] = fmt.Sprintf("echo %d", i)
	}

	return NewCommandList(cmds...)
}

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return ctxlog.New(context.Background(), logger), buf
}

func TestNew_NilExecutor(t *testing.T) {
	d, err := New(nil)
	require.ErrorIs(t, err, ErrNilExecutor)
	assert.Nil(t, d)
}

func TestDispatch_RunsEveryCommandOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		n       int
		workers int
	}{
		{n: 1, workers: 1},
		{n: 10, workers: 3},
		{n: 3, workers: 10},
		{n: 17, workers: 17},
		{n: 50, workers: 7},
		{n: 100, workers: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d workers=%d", tt.n, tt.workers), func(t *testing.T) {
			rec := &recorder{}
			d, err := New(rec)
			require.NoError(t, err)

			commands := makeCommands(tt.n)
			require.NoError(t, d.Dispatch(context.Background(), commands, tt.workers))

			counts := rec.counts()
			assert.Len(t, counts, tt.n)

			for i := range tt.n {
				assert.Equal(t, 1, counts[commands.At(i)], "command %d", i)
			}
		})
	}
}

func TestDispatch_OrderWithinWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	commands := makeCommands(10)

	var (
		mu      sync.Mutex
		byLabel = make(map[string][]string)
	)

	exec := ExecutorFunc(func(ctx context.Context, command string) error {
		// the worker id is not visible to the executor, so use the span of the
		// command instead: indexes 0-2, 3-5 and 6-9.
		var idx int
		_, _ = fmt.Sscanf(command, "echo %d", &idx)

		lane := "c"

		switch {
		case idx < 3:
			lane = "a"
		case idx < 6:
			lane = "b"
		}

		mu.Lock()
		byLabel[lane] = append(byLabel[lane], command)
		mu.Unlock()

		return nil
	})

	d, err := New(exec)
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(context.Background(), commands, 3))

	assert.Equal(t, []string{"echo 0", "echo 1", "echo 2"}, byLabel["a"])
	assert.Equal(t, []string{"echo 3", "echo 4", "echo 5"}, byLabel["b"])
	assert.Equal(t, []string{"echo 6", "echo 7", "echo 8", "echo 9"}, byLabel["c"])
}

func TestDispatch_ClampEmitsNotice(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, buf := captureLogs(t)

	var running, peak atomic.Int32

	exec := ExecutorFunc(func(context.Context, string) error {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}

		time.Sleep(20 * time.Millisecond)
		running.Add(-1)

		return nil
	})

	d, err := New(exec)
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, makeCommands(3), 10))

	assert.Contains(t, buf.String(), "adjusting thread count to number of commands")
	assert.Contains(t, buf.String(), "requested=10")
	assert.Contains(t, buf.String(), "commands=3")
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestDispatch_NoNoticeWithoutClamp(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, buf := captureLogs(t)

	d, err := New(&recorder{})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, makeCommands(6), 3))

	assert.NotContains(t, buf.String(), "adjusting thread count")
}

func TestDispatch_EmptyListIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	called := false
	d, err := New(ExecutorFunc(func(context.Context, string) error {
		called = true
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), NewCommandList(), 4))
	assert.False(t, called)
}

func TestDispatch_InvalidWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	d, err := New(rec)
	require.NoError(t, err)

	for _, w := range []int{0, -1} {
		err := d.Dispatch(context.Background(), makeCommands(3), w)
		require.ErrorIs(t, err, ErrInvalidWorkerCount)
	}

	assert.Empty(t, rec.counts())
}

func TestDispatch_IgnoresCommandErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, buf := captureLogs(t)
	rec := &recorder{err: errors.New("exit status 127")}

	d, err := New(rec)
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, makeCommands(5), 2))

	assert.Len(t, rec.counts(), 5, "a failing command must not stop its worker")
	assert.Contains(t, buf.String(), "exit status 127")
}

func TestDispatch_WaitsForAllWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	var done atomic.Int32

	d, err := New(ExecutorFunc(func(context.Context, string) error {
		time.Sleep(30 * time.Millisecond)
		done.Add(1)

		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), makeCommands(8), 4))
	assert.Equal(t, int32(8), done.Load())
}

func TestDispatch_RunsInParallel(t *testing.T) {
	defer goleak.VerifyNone(t)

	d, err := New(&recorder{delay: 100 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, d.Dispatch(context.Background(), makeCommands(4), 4))
	assert.Less(t, time.Since(start), 300*time.Millisecond, "expected parallel execution to be faster than serial")
}
