// Package todo supplies the bot's read-only to-do list. The list is a flat,
// global sequence of items; which store it comes from is an implementation
// detail behind the Source interface.
package todo

import (
	"context"
	"errors"
)

// ErrNotFound reports that the configured list does not exist yet. Callers
// treat it as a recoverable condition, not a fault.
var ErrNotFound = errors.New("todo: list not found")

// Source loads the current to-do list. Implementations must not cache:
// the list is re-read on every qualifying message so edits show up
// immediately.
type Source interface {
	Load(ctx context.Context) ([]string, error)
}
