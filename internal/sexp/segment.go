package sexp

import (
	"errors"
	"io"
)

// CountForms reports how many complete top-level forms text contains.
// Comments and forms nested inside string or character syntax are not
// counted. Counting stops at the first position where no complete form can
// be scanned, so a malformed or truncated trailing form contributes zero.
// Empty or comment-only text yields 0.
func CountForms(text string) int {
	r := NewReader(text)
	n := 0
	for {
		if _, err := r.Read(); err != nil {
			return n
		}
		n++
	}
}

// Incomplete reports whether text ends in the middle of a form. It is the
// multi-line continuation probe: complete text and hard syntax errors both
// return false, only a truncated form returns true.
func Incomplete(text string) bool {
	r := NewReader(text)
	for {
		_, err := r.Read()
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return false
		}
		return errors.Is(err, ErrIncomplete)
	}
}
