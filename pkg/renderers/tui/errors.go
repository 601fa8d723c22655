package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnresolved is returned when validation keeps failing on fields the
	// session cannot prompt for, such as fields that are currently hidden.
	ErrUnresolved = errors.New("tui: validation errors on fields that cannot be prompted")
)
