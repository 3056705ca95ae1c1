// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"iter"
	"slices"
)

// CommandList is an ordered list of command strings.
// It is never modified after construction and is shared by all workers without locking.
type CommandList struct {
	commands []string
}

// NewCommandList creates a CommandList holding a copy of the supplied commands.
func NewCommandList(commands ...string) CommandList {
	return CommandList{commands: slices.Clone(commands)}
}

// Len returns the number of commands in the list.
func (l CommandList) Len() int {
	return len(l.commands)
}

// At returns the command at index i.
func (l CommandList) At(i int) string {
	return l.commands[i]
}

// Span returns an iterator over the commands covered by s, in list order.
func (l CommandList) Span(s Span) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i := s.Start; i < s.End(); i++ {
			if !yield(i, l.commands[i]) {
				return
			}
		}
	}
}

// Commands returns a copy of the commands in the list.
func (l CommandList) Commands() []string {
	return slices.Clone(l.commands)
}
