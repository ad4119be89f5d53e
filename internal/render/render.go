// Package render formats evaluation results and decides which display
// surface shows them.
//
// Rendering never fails: a pretty printer is tried first and any error or
// panic from it falls back to the value's canonical single-line form.
// Output longer than InlineLimit display cells is routed to the auxiliary
// surface, everything else to the inline status line.
package render

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

// InlineLimit is the display width above which output moves to the
// auxiliary surface. Fixed by design, not a configuration knob.
const InlineLimit = 100

// Target selects the display surface for a rendered result.
type Target int

const (
	// TargetInline is the primary inline status line.
	TargetInline Target = iota
	// TargetAuxiliary is the secondary read-only output view.
	TargetAuxiliary
)

func (t Target) String() string {
	if t == TargetAuxiliary {
		return "auxiliary"
	}
	return "inline"
}

// Output is a rendered result and the surface that should display it.
type Output struct {
	Target Target
	Text   string
}

// PrettyPrinter is implemented by values that support a multi-line
// formatted representation.
type PrettyPrinter interface {
	Pretty() (string, error)
}

// Render formats v and picks its display target. A nil value renders as
// nil. Pretty-printing failures of any kind, including panics, fall back
// to the canonical representation; callers never see a formatting error.
func Render(v eval.Value) Output {
	text := renderText(v)
	return Output{Target: targetFor(text), Text: text}
}

// RenderError formats an evaluation failure for display. Errors follow the
// same surface routing as values so long backtraces do not flood the
// status line.
func RenderError(err error) Output {
	text := err.Error()
	return Output{Target: targetFor(text), Text: text}
}

func renderText(v eval.Value) string {
	if v == nil {
		return "nil"
	}
	if text, ok := pretty(v); ok {
		return text
	}
	return v.String()
}

// pretty attempts the multi-line formatting, recovering from panics so a
// broken printer can never take down the console.
func pretty(v eval.Value) (text string, ok bool) {
	pp, isPretty := v.(PrettyPrinter)
	if !isPretty {
		return "", false
	}
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	text, err := pp.Pretty()
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// targetFor measures text in display cells, not bytes, so wide runes count
// honestly against the limit.
func targetFor(text string) Target {
	width := 0
	for _, line := range strings.Split(text, "\n") {
		width += uniseg.StringWidth(line)
	}
	if width > InlineLimit {
		return TargetAuxiliary
	}
	return TargetInline
}
