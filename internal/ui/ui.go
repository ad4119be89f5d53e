// Package ui implements the console's two display surfaces: the inline
// status line and the auxiliary output view for results too long to show
// inline. The surfaces render text handed to them; all routing decisions
// happen in the render package.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Inline prints results as a single status line.
type Inline struct {
	Out io.Writer
}

// NewInline creates an inline surface writing to out.
func NewInline(out io.Writer) *Inline {
	return &Inline{Out: out}
}

// Show writes text as one line. Embedded newlines collapse to spaces since
// the status line has a single row.
func (s *Inline) Show(text string) {
	fmt.Fprintf(s.Out, "=> %s\n", strings.ReplaceAll(text, "\n", " "))
}

// Aux displays long results. On an interactive terminal it opens a
// read-only full-screen pager; otherwise, or if the pager cannot start,
// it writes the text as a plain block.
type Aux struct {
	Out         io.Writer
	Interactive bool
}

// NewAux creates an auxiliary surface writing to out. Pass interactive
// true when out is a terminal the pager may take over.
func NewAux(out io.Writer, interactive bool) *Aux {
	return &Aux{Out: out, Interactive: interactive}
}

// Show displays text on the auxiliary surface.
func (s *Aux) Show(text string) {
	if s.Interactive {
		if err := pageText(text); err == nil {
			return
		}
	}
	fmt.Fprintln(s.Out, text)
}
