package lisp

import (
	"context"
	"strings"
	"testing"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

func evalString(t *testing.T, in *Interp, src string) eval.Value {
	t.Helper()
	engine := eval.NewEngine(in)
	v, err := engine.Evaluate(context.Background(), "test", src)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", src, err)
	}
	return v
}

func TestEvalBasics(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(+ 1 2)", "3"},
		{"(* 2 3 4)", "24"},
		{"(- 10 3 2)", "5"},
		{"(- 5)", "-5"},
		{"(/ 10 4)", "2"},
		{"(/ 10 4.0)", "2.5"},
		{"(% 10 3)", "1"},
		{"(1+ 41)", "42"},
		{"(+ 1 2.5)", "3.5"},
		{"(< 1 2 3)", "t"},
		{"(< 1 3 2)", "nil"},
		{"(max 3 1 7 2)", "7"},
		{"42", "42"},
		{"-17", "-17"},
		{`"hello"`, `"hello"`},
		{"nil", "nil"},
		{"t", "t"},
		{"'foo", "foo"},
		{"'(1 2 3)", "(1 2 3)"},
		{"()", "nil"},
		{"(list 1 2 3)", "(1 2 3)"},
		{"(cons 1 '(2 3))", "(1 2 3)"},
		{"(car '(1 2 3))", "1"},
		{"(cdr '(1 2 3))", "(2 3)"},
		{"(nth 1 '(a b c))", "b"},
		{"(length '(a b c))", "3"},
		{"(append '(1 2) '(3 4))", "(1 2 3 4)"},
		{"(reverse '(1 2 3))", "(3 2 1)"},
		{`(concat "foo" "bar")`, `"foobar"`},
		{`(length "héllo")`, "5"},
		{"(equal '(1 (2)) '(1 (2)))", "t"},
		{"(eq 'a 'a)", "t"},
		{"(not nil)", "t"},
		{"(if (> 2 1) 'yes 'no)", "yes"},
		{"(if nil 'yes 'a 'b)", "b"},
		{"(when t 1 2 3)", "3"},
		{"(unless t 1)", "nil"},
		{"(cond (nil 1) (t 2))", "2"},
		{"(and 1 2 3)", "3"},
		{"(and 1 nil 3)", "nil"},
		{"(or nil 2)", "2"},
		{"(let ((a 1) (b 2)) (+ a b))", "3"},
		{"(let* ((a 1) (b (+ a 1))) b)", "2"},
		{"(progn 1 2 3)", "3"},
		{"((lambda (x) (* x x)) 6)", "36"},
		{"(funcall '+ 1 2)", "3"},
		{"(apply '+ 1 '(2 3))", "6"},
		{`(format "%s=%d" 'x 42)`, `"x=42"`},
		{`(message "count %d" 3)`, `"count 3"`},
		{"?a", "97"},
		{"(numberp 1)", "t"},
		{"(stringp 'foo)", "nil"},
		{"(null '())", "t"},
		{"(setq x 1) (setq y 2) (+ x y)", "3"},
		{"(while nil)", "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalString(t, New(), tt.src)
			if got := v.String(); got != tt.want {
				t.Errorf("%s => %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestStatePersistsAcrossSubmissions(t *testing.T) {
	in := New()
	evalString(t, in, "(setq counter 10)")
	v := evalString(t, in, "(setq counter (+ counter 5)) counter")
	if v.String() != "15" {
		t.Errorf("counter = %s, want 15", v.String())
	}
}

func TestContextIsolation(t *testing.T) {
	in := New()
	engine := eval.NewEngine(in)
	ctx := context.Background()

	if _, err := engine.Evaluate(ctx, "buffer-a", "(setq shared 1)"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	_, err := engine.Evaluate(ctx, "buffer-b", "shared")
	if err == nil {
		t.Fatal("variable leaked across execution contexts")
	}
	if !strings.Contains(err.Error(), "void-variable") {
		t.Errorf("err = %v, want void-variable", err)
	}
}

func TestDefvarKeepsExistingBinding(t *testing.T) {
	in := New()
	evalString(t, in, "(setq opt 1)")
	evalString(t, in, "(defvar opt 99)")
	if v := evalString(t, in, "opt"); v.String() != "1" {
		t.Errorf("opt = %s, want 1", v.String())
	}
}

func TestDefunAndRecursion(t *testing.T) {
	in := New()
	evalString(t, in, "(defun fact (n) (if (<= n 1) 1 (* n (fact (1- n)))))")
	if v := evalString(t, in, "(fact 5)"); v.String() != "120" {
		t.Errorf("(fact 5) = %s, want 120", v.String())
	}
}

func TestWhileLoop(t *testing.T) {
	in := New()
	src := "(setq i 0) (setq sum 0) (while (< i 5) (setq sum (+ sum i)) (setq i (1+ i))) sum"
	if v := evalString(t, in, src); v.String() != "10" {
		t.Errorf("sum = %s, want 10", v.String())
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"undefined-var", "void-variable"},
		{"(undefined-fn 1)", "void-variable"},
		{"(+ 1 'sym)", "wrong-type-argument"},
		{"(/ 1 0)", "division by zero"},
		{`(error "custom failure %d" 7)`, "custom failure 7"},
		{"(car 5)", "wrong-type-argument"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			engine := eval.NewEngine(New())
			_, err := engine.Evaluate(context.Background(), "test", tt.src)
			if err == nil {
				t.Fatalf("%s: expected error", tt.src)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPrettyBreaksLongLists(t *testing.T) {
	items := make(List, 30)
	for i := range items {
		items[i] = Symbol("element")
	}
	out, err := items.Pretty()
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if !strings.Contains(out, "\n") {
		t.Error("long list should break across lines")
	}

	short := List{Integer(1), Integer(2)}
	out, err = short.Pretty()
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if out != "(1 2)" {
		t.Errorf("short list pretty = %q", out)
	}
}

func TestFloatPrinting(t *testing.T) {
	if got := Float(2).String(); got != "2.0" {
		t.Errorf("Float(2) = %q, want 2.0", got)
	}
	if got := Float(2.5).String(); got != "2.5" {
		t.Errorf("Float(2.5) = %q, want 2.5", got)
	}
}
