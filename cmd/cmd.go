// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for splitrun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/matt-FFFFFF/splitrun"
	"github.com/matt-FFFFFF/splitrun/internal/commandfile"
	"github.com/matt-FFFFFF/splitrun/internal/config"
	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
	"github.com/matt-FFFFFF/splitrun/internal/dispatch"
	"github.com/matt-FFFFFF/splitrun/internal/shell"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag      = "file"
	threadsFlag   = "threads"
	configFlag    = "config"
	shellFlag     = "shell"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"

	logFormatPretty = "pretty"
	logFormatJSON   = "json"

	fileEnv    = "SPLITRUN_FILE"
	threadsEnv = "SPLITRUN_THREADS"

	usageFormat = "Usage: %s -f <command-list-file> -t <number of threads>\n"
)

var (
	// ErrInvalidArgument is returned for positional arguments, every option is a flag.
	ErrInvalidArgument = errors.New("is not a valid argument")
	// ErrInvalidOptions is returned when the options fail validation.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrLoadCommands is returned when the command list cannot be loaded.
	ErrLoadCommands = errors.New("failed to load commands")
	// ErrLogFormat is returned for an unknown --log-format value.
	ErrLogFormat = errors.New("unknown log format")
)

// newExecutor builds the executor for a run. Tests replace it with a recording stub.
var newExecutor = func(ctx context.Context, opts *config.Options) dispatch.Executor {
	return shell.New(ctx, shell.WithShell(opts.Shell), shell.WithEnv(opts.Env))
}

// New returns the root command. Output goes to stdout and stderr.
func New() *cli.Command {
	return &cli.Command{
		Name:      "splitrun",
		Usage:     "run a file of shell commands across a fixed number of workers",
		UsageText: "splitrun -f <command-list-file> -t <number of threads>",
		Description: `splitrun reads one shell command per line from a file and splits the list into
contiguous chunks, one per worker. Every worker runs its chunk in order while the
workers run side by side. splitrun returns once every command has been run.

The command list may be a local path or a go-getter URL, see https://github.com/hashicorp/go-getter.
Command exit codes are not checked.`,
		Version:   fmt.Sprintf("%s (%s)", splitrun.Version, splitrun.Commit),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      fileFlag,
				Aliases:   []string{"f"},
				Usage:     "Command list file, one command per line. Local path or go-getter URL",
				Sources:   cli.EnvVars(fileEnv),
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.IntFlag{
				Name:     threadsFlag,
				Aliases:  []string{"t"},
				Usage:    "Number of worker threads, must be greater than zero",
				Sources:  cli.EnvVars(threadsEnv),
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "YAML file with defaults for file, threads, shell and env",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:     shellFlag,
				Usage:    "Shell used to run each command. Defaults to $SHELL, then /bin/sh (cmd.exe on Windows)",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:     logLevelFlag,
				Usage:    "Log level: DEBUG, INFO, WARN or ERROR. Overrides " + ctxlog.LogLevelEnvVar,
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:     logFormatFlag,
				Usage:    "Log format: pretty or json",
				Value:    logFormatPretty,
				OnlyOnce: true,
			},
		},
		Action: actionFunc,
	}
}

// Run runs the root command with the process arguments.
// Called without any argument it prints the usage line and succeeds.
func Run(ctx context.Context, root *cli.Command, args []string) error {
	if len(args) < 2 {
		name := root.Name
		if len(args) == 1 {
			name = args[0]
		}

		_, err := fmt.Fprintf(root.Writer, usageFormat, name)

		return err //nolint:wrapcheck
	}

	return root.Run(ctx, args) //nolint:wrapcheck
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		return fmt.Errorf("%s %w", cmd.Args().First(), ErrInvalidArgument)
	}

	ctx, err := configureLogging(ctx, cmd)
	if err != nil {
		return err
	}

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	opts, err := resolveOptions(ctx, cmd)
	if err != nil {
		return err
	}

	if err := opts.Validate(); err != nil {
		return errors.Join(ErrInvalidOptions, err)
	}

	commands, err := commandfile.Load(ctx, opts.File)
	if err != nil {
		return errors.Join(ErrLoadCommands, err)
	}

	d, err := dispatch.New(newExecutor(ctx, opts))
	if err != nil {
		return err //nolint:wrapcheck
	}

	logger.Info("running commands", "file", opts.File, "commands", commands.Len(), "threads", opts.Threads)

	start := time.Now()

	if err := d.Dispatch(ctx, commands, opts.Threads); err != nil {
		return err //nolint:wrapcheck
	}

	logger.Info("all commands finished", "commands", commands.Len(), "duration", time.Since(start).String())

	return nil
}

// resolveOptions starts from the config file, if any, and applies flags and
// environment variables on top.
func resolveOptions(ctx context.Context, cmd *cli.Command) (*config.Options, error) {
	opts := &config.Options{}

	if path := cmd.String(configFlag); path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		opts = loaded
	}

	if cmd.IsSet(fileFlag) {
		opts.File = cmd.String(fileFlag)
	}

	if cmd.IsSet(threadsFlag) {
		opts.Threads = cmd.Int(threadsFlag)
	}

	if cmd.IsSet(shellFlag) {
		opts.Shell = cmd.String(shellFlag)
	}

	return opts, nil
}

func configureLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet(logLevelFlag) {
		level, err := ctxlog.ParseLevel(cmd.String(logLevelFlag))
		if err != nil {
			return ctx, err //nolint:wrapcheck
		}

		ctxlog.LevelVar.Set(level)
	}

	switch format := cmd.String(logFormatFlag); format {
	case logFormatPretty:
		return ctx, nil
	case logFormatJSON:
		return ctxlog.New(ctx, jsonLogger(cmd.Root().ErrWriter)), nil
	default:
		return ctx, fmt.Errorf("%w: %q", ErrLogFormat, format)
	}
}

func jsonLogger(w io.Writer) *slog.Logger {
	if w == os.Stderr {
		return ctxlog.JSONLogger
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ctxlog.LevelVar}))
}
