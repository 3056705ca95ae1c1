// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch runs a list of shell commands across a fixed number of workers.
//
// The list is split once into contiguous spans, one per worker. Each worker runs the
// commands in its span in order, one after another, and Dispatch returns when every
// worker has finished. The split does not depend on how long commands take and there
// is no work stealing between workers.
//
// Command outcomes are not collected. An Executor may return an error for a failed
// command, the worker logs it at debug level and carries on with its next command.
package dispatch
