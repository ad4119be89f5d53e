package eval

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeBackend treats each non-empty line as one form and records every
// Exec call. WrapSequence prefixes a marker line so tests can observe
// whether wrapping happened.
type fakeBackend struct {
	execed  []string
	wrapped bool
	failOn  string
	results map[string]string
}

type fakeValue string

func (v fakeValue) String() string { return string(v) }

func (b *fakeBackend) forms(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func (b *fakeBackend) CountForms(text string) int { return len(b.forms(text)) }

func (b *fakeBackend) WrapSequence(text string) string {
	b.wrapped = true
	return text
}

func (b *fakeBackend) Incomplete(string) bool { return false }

type fakeReader struct {
	forms []string
}

func (r *fakeReader) Read() (string, error) {
	if len(r.forms) == 0 {
		return "", io.EOF
	}
	form := r.forms[0]
	r.forms = r.forms[1:]
	return form, nil
}

func (b *fakeBackend) NewReader(text string) FormReader {
	return &fakeReader{forms: b.forms(text)}
}

var errBoom = errors.New("boom")

func (b *fakeBackend) Exec(_ context.Context, _ Context, form string) (Value, error) {
	if form == b.failOn {
		return nil, errBoom
	}
	b.execed = append(b.execed, form)
	if r, ok := b.results[form]; ok {
		return fakeValue(r), nil
	}
	return fakeValue(form), nil
}

func TestEvaluateSingleFormNotWrapped(t *testing.T) {
	b := &fakeBackend{}
	engine := NewEngine(b)

	v, err := engine.Evaluate(context.Background(), "buf", "(defvar x 1)")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if b.wrapped {
		t.Error("single form should not be wrapped")
	}
	if v.String() != "(defvar x 1)" {
		t.Errorf("value = %q", v.String())
	}
}

func TestEvaluateMultiFormOrderAndLastValue(t *testing.T) {
	b := &fakeBackend{results: map[string]string{"(+ x y)": "3"}}
	engine := NewEngine(b)

	v, err := engine.Evaluate(context.Background(), "buf", "(setq x 1)\n(setq y 2)\n(+ x y)")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !b.wrapped {
		t.Error("multi-form text should be wrapped")
	}
	want := []string{"(setq x 1)", "(setq y 2)", "(+ x y)"}
	if len(b.execed) != len(want) {
		t.Fatalf("executed %d forms, want %d", len(b.execed), len(want))
	}
	for i, form := range want {
		if b.execed[i] != form {
			t.Errorf("form %d = %q, want %q", i, b.execed[i], form)
		}
	}
	if v.String() != "3" {
		t.Errorf("last value = %q, want 3", v.String())
	}
}

func TestEvaluateEmptyText(t *testing.T) {
	engine := NewEngine(&fakeBackend{})

	v, err := engine.Evaluate(context.Background(), "buf", "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != nil {
		t.Errorf("value = %v, want nil for empty text", v)
	}
}

func TestEvaluateErrorPropagates(t *testing.T) {
	b := &fakeBackend{failOn: "(broken)"}
	engine := NewEngine(b)

	_, err := engine.Evaluate(context.Background(), "buf", "(ok)\n(broken)\n(never)")
	if err == nil {
		t.Fatal("expected error")
	}
	var evalErr *Error
	if !errors.As(err, &evalErr) {
		t.Fatalf("err type = %T, want *Error", err)
	}
	if evalErr.Form != "(broken)" {
		t.Errorf("failing form = %q", evalErr.Form)
	}
	if !errors.Is(err, errBoom) {
		t.Error("wrapped cause lost")
	}
	for _, f := range b.execed {
		if f == "(never)" {
			t.Error("form after failure was executed")
		}
	}
}
