// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
	"github.com/matt-FFFFFF/splitrun/internal/dispatch"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"
	commandSwitchUnix    = "-c"
	winSystem32          = "System32"
	cmdExe               = "cmd.exe"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
	shellEnv             = "SHELL"
)

var _ dispatch.Executor = (*Executor)(nil)

var (
	// ErrCommandFailed is returned when the shell exits with a non-zero code.
	ErrCommandFailed = errors.New("command failed")
	// ErrCouldNotStart is returned when the shell process could not be started.
	ErrCouldNotStart = errors.New("could not start shell")
)

// Executor runs each command through a shell. It is safe for concurrent use.
type Executor struct {
	shell  string
	env    map[string]string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithShell sets the shell executable. An empty path keeps the default.
func WithShell(path string) Option {
	return func(e *Executor) {
		if path != "" {
			e.shell = path
		}
	}
}

// WithEnv adds variables to the environment inherited from this process.
func WithEnv(env map[string]string) Option {
	return func(e *Executor) {
		e.env = maps.Clone(env)
	}
}

// WithStdin sets the reader connected to the command's stdin.
func WithStdin(r io.Reader) Option {
	return func(e *Executor) {
		e.stdin = r
	}
}

// WithStdout sets the writer connected to the command's stdout.
func WithStdout(w io.Writer) Option {
	return func(e *Executor) {
		e.stdout = w
	}
}

// WithStderr sets the writer connected to the command's stderr.
func WithStderr(w io.Writer) Option {
	return func(e *Executor) {
		e.stderr = w
	}
}

// New creates an Executor using the default shell and this process's standard streams.
func New(ctx context.Context, opts ...Option) *Executor {
	e := &Executor{
		shell:  DefaultShell(ctx),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Shell returns the path of the shell used to run commands.
func (e *Executor) Shell() string {
	return e.shell
}

// Execute implements dispatch.Executor. It blocks until the shell exits.
// A non-zero exit returns ErrCommandFailed; the caller decides whether that matters.
func (e *Executor) Execute(ctx context.Context, command string) error {
	logger := ctxlog.Logger(ctx).With("shell", e.shell)

	cmd := exec.CommandContext(ctx, e.shell, commandSwitch(), command) //nolint:gosec
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	cmd.Env = e.environ()

	logger.Debug("starting command", "command", command)

	if err := cmd.Start(); err != nil {
		return errors.Join(ErrCouldNotStart, err)
	}

	err := cmd.Wait()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: exit code %d: %w", ErrCommandFailed, exitErr.ExitCode(), err)
	}

	if err != nil {
		return errors.Join(ErrCommandFailed, err)
	}

	logger.Debug("command finished", "command", command)

	return nil
}

func (e *Executor) environ() []string {
	env := os.Environ()

	for _, k := range slices.Sorted(maps.Keys(e.env)) {
		env = append(env, fmt.Sprintf("%s=%s", k, e.env[k]))
	}

	return env
}

func commandSwitch() string {
	if runtime.GOOS == GOOSWindows {
		return commandSwitchWindows
	}

	return commandSwitchUnix
}

// DefaultShell returns cmd.exe on Windows, otherwise $SHELL or /bin/sh.
func DefaultShell(ctx context.Context) string {
	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv(shellEnv); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}
