// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/splitrun/internal/ctxlog"
)

const (
	goGetterForcedSeparator = "::"
	goGetterSchemeSeparator = "://"
	goGetterPathSeparator   = "//"
	goGetterRefSeparator    = "?"
	minimumGetterParts      = 3 // scheme, host and path
	fetchedFileName         = "commands"
)

// ErrFetchCommandFile is returned when a remote command list cannot be downloaded.
var ErrFetchCommandFile = errors.New("failed to fetch command list file")

// IsRemote reports whether source should be fetched with go-getter rather than read locally.
func IsRemote(source string) bool {
	return strings.Contains(source, goGetterForcedSeparator) ||
		strings.Contains(source, goGetterSchemeSeparator)
}

// fetch downloads source into a temporary directory and returns the local path of the
// file together with a function removing the directory.
func fetch(ctx context.Context, source string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "splitrun-getter-*")
	if err != nil {
		return "", nil, errors.Join(ErrFetchCommandFile, err)
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	wd, err := os.Getwd()
	if err != nil {
		cleanup()
		return "", nil, errors.Join(ErrFetchCommandFile, err)
	}

	req := &getter.Request{
		Src:     source,
		Dst:     filepath.Join(tmpDir, fetchedFileName),
		Pwd:     wd,
		GetMode: getter.ModeFile,
		Copy:    true,
	}

	// A URL with a // subdirectory names a file inside a repository or archive.
	// go-getter can only fetch those as a directory, https://github.com/hashicorp/go-getter/issues/98
	src, fileName := splitFileNameFromGetterURL(source)
	if src != "" {
		req.Src = src
		req.Dst = filepath.Join(tmpDir, "g")
		req.GetMode = getter.ModeDir
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	ctxlog.Debug(ctx, "fetching command list", "src", req.Src, "dir", req.GetMode == getter.ModeDir)

	res, err := client.Get(ctx, req)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: %s: %w", ErrFetchCommandFile, source, err)
	}

	if req.GetMode == getter.ModeDir {
		return filepath.Join(res.Dst, fileName), cleanup, nil
	}

	return res.Dst, cleanup, nil
}

// splitFileNameFromGetterURL splits a go-getter URL pointing at a file into the URL of
// its directory and the file name. A ref query is kept on the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if last == "" || filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	dir := filepath.Dir(last)

	if dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
