// Package command turns chat messages into queued key presses.
//
// A Table maps recognized message texts to action keys. A Processor looks
// each incoming message up in the current Table and, on a match, queues the
// action on the dispatch pool. Matching is exact string equality, after
// Unicode case folding when the table is case-insensitive.
package command

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"github.com/dshills/twitchplays/internal/emulator"
)

// Table construction errors.
var (
	ErrEmptyCommand = errors.New("empty command text")
	ErrEmptyAction  = errors.New("empty action key")
	ErrDuplicate    = errors.New("duplicate command after case folding")
)

// Table is an immutable mapping from message text to action key.
type Table struct {
	caseInsensitive bool
	entries         map[string]emulator.ActionKey
}

// NewTable builds a table from a commandset (message text -> key name).
// When caseInsensitive is set, message texts are folded here and at lookup,
// so two texts that differ only in case are rejected as duplicates.
func NewTable(commandset map[string]string, caseInsensitive bool) (*Table, error) {
	t := &Table{
		caseInsensitive: caseInsensitive,
		entries:         make(map[string]emulator.ActionKey, len(commandset)),
	}

	// Sorted iteration keeps duplicate errors deterministic.
	texts := make([]string, 0, len(commandset))
	for text := range commandset {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	for _, text := range texts {
		action := commandset[text]
		if text == "" {
			return nil, ErrEmptyCommand
		}
		if action == "" {
			return nil, fmt.Errorf("%w for command %q", ErrEmptyAction, text)
		}

		key := t.Normalize(text)
		if prev, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("%w: %q (already mapped to %q)", ErrDuplicate, text, prev)
		}
		t.entries[key] = emulator.ActionKey(action)
	}

	return t, nil
}

// Normalize applies the table's case handling to text.
func (t *Table) Normalize(text string) string {
	if !t.caseInsensitive {
		return text
	}
	// cases.Caser is stateful, so a fresh one per call keeps Table safe
	// for concurrent lookups.
	return cases.Fold().String(text)
}

// Lookup returns the action mapped to text, if any.
func (t *Table) Lookup(text string) (emulator.ActionKey, bool) {
	action, ok := t.entries[t.Normalize(text)]
	return action, ok
}

// Len returns the number of commands.
func (t *Table) Len() int {
	return len(t.entries)
}

// CaseInsensitive reports whether lookups fold case.
func (t *Table) CaseInsensitive() bool {
	return t.caseInsensitive
}

// Commands returns the normalized command texts in sorted order.
func (t *Table) Commands() []string {
	out := make([]string, 0, len(t.entries))
	for text := range t.entries {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

// Actions returns every distinct action key in sorted order.
func (t *Table) Actions() []emulator.ActionKey {
	seen := make(map[emulator.ActionKey]bool, len(t.entries))
	out := make([]emulator.ActionKey, 0, len(t.entries))
	for _, action := range t.entries {
		if !seen[action] {
			seen[action] = true
			out = append(out, action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
