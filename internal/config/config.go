// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the options for a run and loads them from an optional YAML file.
//
// Example file:
//
//	file: commands.txt
//	threads: 4
//	shell: /bin/bash
//	env:
//	  BUILD_MODE: release
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNoCommandFile is returned when no command list file is configured.
	ErrNoCommandFile = errors.New("no command list file given")
	// ErrInvalidThreadCount is returned when the thread count is not a positive integer.
	ErrInvalidThreadCount = errors.New("thread count not valid")
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrInvalidYaml is returned when the config file is not valid YAML for Options.
	ErrInvalidYaml = errors.New("invalid YAML")
)

// FS is the filesystem config files are read from.
var FS afero.Fs = afero.NewOsFs()

// Options are the values a run needs. File and Threads are required.
type Options struct {
	File    string            `yaml:"file"`    // Command list path or go-getter URL
	Threads int               `yaml:"threads"` // Number of workers requested
	Shell   string            `yaml:"shell"`   // Shell used to run commands, empty for the default
	Env     map[string]string `yaml:"env"`     // Extra environment for every command
}

// Parse decodes YAML into Options. Unknown keys are rejected.
func Parse(data []byte) (*Options, error) {
	opts := &Options{}
	if err := yaml.UnmarshalWithOptions(data, opts, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err) //nolint:errorlint
	}

	return opts, nil
}

// Load reads and decodes the YAML config file at path from FS.
func Load(ctx context.Context, path string) (*Options, error) {
	data, err := afero.ReadFile(FS, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	opts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ctxlog.Debug(ctx, "loaded config file", "path", path, "file", opts.File, "threads", opts.Threads)

	return opts, nil
}

// Validate reports every problem with the required options at once.
func (o *Options) Validate() error {
	var result *multierror.Error

	if o.File == "" {
		result = multierror.Append(result, ErrNoCommandFile)
	}

	if o.Threads <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrInvalidThreadCount, o.Threads))
	}

	if result != nil {
		result.ErrorFormat = joinErrors
	}

	return result.ErrorOrNil()
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}
