package sexp

import "errors"

// Scanning errors.
var (
	// ErrIncomplete is returned when a form starts but the text ends
	// before it terminates: an unclosed list, an unterminated string,
	// or a quote prefix with nothing after it.
	ErrIncomplete = errors.New("incomplete form")

	// ErrUnbalanced is returned when a closing delimiter appears with
	// no matching opener, or the wrong kind of closer terminates a list.
	ErrUnbalanced = errors.New("unbalanced delimiter")
)
