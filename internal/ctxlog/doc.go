// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes to stderr through PrettyHandler, a console handler that prints
// the time, level and message followed by the record attributes as JSON.
// The level comes from the SPLITRUN_LOG_LEVEL environment variable and can be changed at
// runtime through LevelVar.
package ctxlog
