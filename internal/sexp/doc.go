// Package sexp provides lexical scanning of s-expression text without
// building a syntax tree.
//
// The package answers two questions about submitted console text: how many
// complete top-level forms it contains, and where each form begins and
// ends. Comments, string literals, and character literals are skipped, so
// a parenthesis inside a string never opens a form and a form written
// inside a comment is never counted.
//
// # Reader
//
// The Reader walks top-level forms front to back:
//
//	r := sexp.NewReader(`(setq x 1) (+ x 2)`)
//	for {
//	    form, err := r.Read()
//	    if err != nil {
//	        break // io.EOF when the text is exhausted
//	    }
//	    fmt.Println(form.Text)
//	}
//
// Read returns io.EOF when no further form exists. A form that starts but
// never terminates (an open list, an unterminated string, a dangling quote)
// yields ErrIncomplete instead, so callers can tell "done" from "truncated".
package sexp
