// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell hands command strings to the platform shell.
//
// On Unix the command runs as `$SHELL -c <command>`, falling back to /bin/sh.
// On Windows it runs as `%SystemRoot%\System32\cmd.exe /C <command>`.
// The child inherits stdin, stdout and stderr, so its output is not captured.
package shell
