// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes for the console log handler.
//
// Colour is decided once at start-up: NO_COLOR disables it, FORCE_COLOR enables it,
// otherwise it is on when stderr is a terminal.
package color
