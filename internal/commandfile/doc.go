// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandfile reads a command list, one command per line.
//
// Lines are kept verbatim: only the terminating newline is removed, so blank lines and
// trailing carriage returns are part of the list. Sources are either local paths, read
// through an afero filesystem, or go-getter URLs such as
// `git::https://example.com/repo.git//jobs/commands.txt?ref=main`.
package commandfile
