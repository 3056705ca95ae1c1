// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
	"github.com/matt-FFFFFF/splitrun/internal/dispatch"
	"github.com/spf13/afero"
)

var (
	// ErrReadCommandFile is returned when the command list cannot be read.
	ErrReadCommandFile = errors.New("failed to read command list file")
	// ErrNoSource is returned when no command list source is given.
	ErrNoSource = errors.New("no command list source given")
)

// FS is the filesystem local command files are read from.
// Tests replace it with an in-memory filesystem.
var FS afero.Fs = afero.NewOsFs()

// Load reads the command list from source, fetching it first if it is a go-getter URL.
func Load(ctx context.Context, source string) (dispatch.CommandList, error) {
	if source == "" {
		return dispatch.CommandList{}, ErrNoSource
	}

	if !IsRemote(source) {
		return Read(ctx, FS, source)
	}

	local, cleanup, err := fetch(ctx, source)
	if err != nil {
		return dispatch.CommandList{}, err
	}

	defer cleanup()

	return Read(ctx, afero.NewOsFs(), local)
}

// Read reads the command list stored in name on fs.
func Read(ctx context.Context, fs afero.Fs, name string) (dispatch.CommandList, error) {
	f, err := fs.Open(name)
	if err != nil {
		return dispatch.CommandList{}, fmt.Errorf("%w: %s: %w", ErrReadCommandFile, name, err)
	}

	defer f.Close() //nolint:errcheck

	lines, err := ReadLines(f)
	if err != nil {
		return dispatch.CommandList{}, fmt.Errorf("%w: %s: %w", ErrReadCommandFile, name, err)
	}

	ctxlog.Debug(ctx, "read command list", "file", name, "commands", len(lines))

	return dispatch.NewCommandList(lines...), nil
}

// ReadLines splits r into lines. A trailing newline does not start an extra line.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)

	var lines []string

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}

		if errors.Is(err, io.EOF) {
			return lines, nil
		}

		if err != nil {
			return nil, err //nolint:wrapcheck
		}
	}
}
