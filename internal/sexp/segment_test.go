package sexp

import (
	"errors"
	"io"
	"testing"
)

func TestCountForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t  ", 0},
		{"comment only", "; just a comment\n;; another\n", 0},
		{"single form", "(+ 1 2)", 1},
		{"three forms", "(setq x 1) (setq y 2) (+ x y)", 3},
		{"atom forms", "foo bar 42", 3},
		{"nested lists count once", "(let ((a 1) (b 2)) (+ a b))", 1},
		{"form inside comment excluded", "(+ 1 2) ; (ignored)\n(+ 3 4)", 2},
		{"paren inside string", `(message "unbalanced ) here") (+ 1 2)`, 2},
		{"form inside string", `"(not a form)"`, 1},
		{"quoted form", "'(1 2 3)", 1},
		{"function quote", "#'identity '(a b)", 2},
		{"backquote with unquote", "`(a ,b ,@c)", 1},
		{"char literal paren", "?( ?)", 2},
		{"char literal escape", `?\n (+ 1 2)`, 2},
		{"vector", "[1 2 3] (+ 1 2)", 2},
		{"incomplete trailing not counted", "(+ 1 2) (defun broken (", 1},
		{"unterminated string not counted", `(ok) "never ends`, 1},
		{"dangling quote not counted", "(ok) '", 1},
		{"stray closer stops count", "(ok) ) (also ok)", 1},
		{"multiline form", "(progn\n  (setq x 1)\n  x)", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountForms(tt.text); got != tt.want {
				t.Errorf("CountForms(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestReaderOffsets(t *testing.T) {
	src := "  (setq x 1)\n(+ x 2) ; tail comment"
	r := NewReader(src)

	first, err := r.Read()
	if err != nil {
		t.Fatalf("first Read: %v", err)
	}
	if first.Text != "(setq x 1)" {
		t.Errorf("first form = %q", first.Text)
	}
	if first.Start != 2 || first.End != 12 {
		t.Errorf("first span = [%d,%d), want [2,12)", first.Start, first.End)
	}

	second, err := r.Read()
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	if second.Text != "(+ x 2)" {
		t.Errorf("second form = %q", second.Text)
	}
	if second.Start <= first.End {
		t.Errorf("forms overlap: second starts at %d", second.Start)
	}

	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("third Read err = %v, want io.EOF", err)
	}
}

func TestReaderIncomplete(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"open list", "(defun f ("},
		{"open string", `"abc`},
		{"dangling quote", "'"},
		{"char at end", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.text)
			if _, err := r.Read(); !errors.Is(err, ErrIncomplete) {
				t.Errorf("Read(%q) err = %v, want ErrIncomplete", tt.text, err)
			}
		})
	}
}

func TestReaderUnbalanced(t *testing.T) {
	r := NewReader(")")
	if _, err := r.Read(); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("err = %v, want ErrUnbalanced", err)
	}

	r = NewReader("(a b]")
	if _, err := r.Read(); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("mismatched closer err = %v, want ErrUnbalanced", err)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"(+ 1 2)", false},
		{"(+ 1 2", true},
		{"(progn\n  (setq x 1)", true},
		{"", false},
		{"; comment", false},
		{")", false},
		{`"open string`, true},
	}
	for _, tt := range tests {
		if got := Incomplete(tt.text); got != tt.want {
			t.Errorf("Incomplete(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
