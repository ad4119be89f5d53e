package sexp

import (
	"io"
	"unicode/utf8"
)

// Form is one complete top-level expression located within submitted text.
// Start and End are byte offsets into the source; forms never overlap and
// follow document order.
type Form struct {
	Start int
	End   int
	Text  string
}

// Reader scans top-level forms from a string, one Read call per form.
// It performs no allocation beyond the returned Form and builds no tree.
type Reader struct {
	src string
	pos int
}

// NewReader creates a Reader over src starting at the beginning.
func NewReader(src string) *Reader {
	return &Reader{src: src}
}

// Read returns the next top-level form. It returns io.EOF when only
// whitespace and comments remain, ErrIncomplete when a form starts but the
// text ends before it closes, and ErrUnbalanced on a stray closer.
func (r *Reader) Read() (Form, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return Form{}, io.EOF
	}
	start := r.pos
	if err := r.scanForm(); err != nil {
		return Form{}, err
	}
	return Form{Start: start, End: r.pos, Text: r.src[start:r.pos]}, nil
}

// Rest returns the unconsumed tail of the source text.
func (r *Reader) Rest() string {
	return r.src[r.pos:]
}

// skipSpace advances past whitespace and ; line comments.
func (r *Reader) skipSpace() {
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			r.pos++
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		default:
			return
		}
	}
}

// scanForm consumes exactly one form starting at the current position,
// including any reader-macro prefixes attached to it.
func (r *Reader) scanForm() error {
	if err := r.scanPrefixes(); err != nil {
		return err
	}
	switch c := r.src[r.pos]; c {
	case '(':
		return r.scanList('(', ')')
	case '[':
		return r.scanList('[', ']')
	case ')', ']':
		return ErrUnbalanced
	case '"':
		return r.scanString()
	case '?':
		return r.scanChar()
	default:
		r.scanAtom()
		return nil
	}
}

// scanPrefixes consumes quote, backquote, unquote, unquote-splicing, and
// function (#') prefixes. A prefix with no following form is incomplete.
func (r *Reader) scanPrefixes() error {
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return ErrIncomplete
		}
		switch c := r.src[r.pos]; c {
		case '\'', '`':
			r.pos++
		case ',':
			r.pos++
			if r.pos < len(r.src) && r.src[r.pos] == '@' {
				r.pos++
			}
		case '#':
			if r.pos+1 < len(r.src) && r.src[r.pos+1] == '\'' {
				r.pos += 2
				continue
			}
			return nil
		default:
			return nil
		}
	}
}

func (r *Reader) scanList(open, close byte) error {
	r.pos++ // consume opener
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return ErrIncomplete
		}
		switch c := r.src[r.pos]; c {
		case close:
			r.pos++
			return nil
		case ')', ']':
			// wrong closer for this list
			return ErrUnbalanced
		default:
			if err := r.scanForm(); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) scanString() error {
	r.pos++ // consume opening quote
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case '\\':
			r.pos = min(r.pos+2, len(r.src))
		case '"':
			r.pos++
			return nil
		default:
			r.pos++
		}
	}
	return ErrIncomplete
}

// scanChar consumes a ?c character literal, including simple ?\x escapes.
func (r *Reader) scanChar() error {
	r.pos++ // consume '?'
	if r.pos >= len(r.src) {
		return ErrIncomplete
	}
	if r.src[r.pos] == '\\' {
		r.pos++
		if r.pos >= len(r.src) {
			return ErrIncomplete
		}
	}
	_, size := utf8.DecodeRuneInString(r.src[r.pos:])
	r.pos += size
	return nil
}

func (r *Reader) scanAtom() {
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; c {
		case ' ', '\t', '\n', '\r', '\f', '(', ')', '[', ']', '"', ';':
			return
		case '\\':
			r.pos = min(r.pos+2, len(r.src))
		default:
			r.pos++
		}
	}
}
