package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Context is the opaque handle naming the target a session evaluates
// against, such as the buffer that opened the console. Backends may key
// interpreter state by it. Exactly one Context is bound per session.
type Context string

// Value is a result produced by a backend. The String method is the
// canonical single-line textual representation, with no depth, length, or
// circularity truncation.
type Value interface {
	String() string
}

// FormReader yields one executable form at a time from a prepared unit of
// text. Read returns io.EOF when the text is exhausted; exhaustion is the
// normal loop-termination signal, not a failure.
type FormReader interface {
	Read() (string, error)
}

// Evaluator is the narrow capability the console needs from an expression
// backend. Implementations decide what a "form" is for their language.
type Evaluator interface {
	// CountForms reports the number of complete top-level forms in text.
	CountForms(text string) int

	// WrapSequence combines multi-form text into one unit that executes
	// the forms in document order and takes the last form's value.
	WrapSequence(text string) string

	// NewReader returns a reader over the prepared unit.
	NewReader(text string) FormReader

	// Incomplete reports whether text ends mid-form. Front-ends use it
	// to decide between submitting and prompting for a continuation.
	Incomplete(text string) bool

	// Exec evaluates a single form against the bound execution context.
	Exec(ctx context.Context, ec Context, form string) (Value, error)
}

// Error wraps a failure raised by evaluated code, keeping the form that
// caused it.
type Error struct {
	Form string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("eval %s: %v", e.Form, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine combines segmentation and execution into the single evaluation
// pass the console performs per submission.
type Engine struct {
	backend Evaluator
}

// NewEngine creates an Engine over the given backend.
func NewEngine(backend Evaluator) *Engine {
	return &Engine{backend: backend}
}

// Backend returns the backend the engine executes with.
func (e *Engine) Backend() Evaluator { return e.backend }

// Evaluate executes every top-level form in text against ec, in document
// order, and returns the last form's value. Multi-form text is wrapped in
// the backend's sequence construct first; single-form text is executed as
// written. Running out of input ends the loop cleanly; any genuine
// evaluation failure is returned as *Error.
func (e *Engine) Evaluate(ctx context.Context, ec Context, text string) (Value, error) {
	unit := text
	if e.backend.CountForms(text) > 1 {
		unit = e.backend.WrapSequence(text)
	}

	r := e.backend.NewReader(unit)
	var last Value
	for {
		form, err := r.Read()
		if errors.Is(err, io.EOF) {
			return last, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := e.backend.Exec(ctx, ec, form)
		if err != nil {
			return nil, &Error{Form: form, Err: err}
		}
		last = v
	}
}
