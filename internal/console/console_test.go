package console

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KarimAziev/elisp-eval/internal/eval"
	"github.com/KarimAziev/elisp-eval/internal/eval/lisp"
	"github.com/KarimAziev/elisp-eval/internal/history"
	"github.com/KarimAziev/elisp-eval/internal/render"
)

// recordingSurface captures everything shown on it.
type recordingSurface struct {
	shown []string
}

func (r *recordingSurface) Show(text string) { r.shown = append(r.shown, text) }

type testConsole struct {
	session *Session
	inline  *recordingSurface
	aux     *recordingSurface
}

func newTestConsole(t *testing.T, historyPath string) *testConsole {
	t.Helper()
	inline := &recordingSurface{}
	aux := &recordingSurface{}
	s, err := Open(Options{
		Engine:      eval.NewEngine(lisp.New()),
		Context:     "*scratch*",
		HistoryPath: historyPath,
		HistoryMax:  10,
		Inline:      inline,
		Auxiliary:   aux,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return &testConsole{session: s, inline: inline, aux: aux}
}

func TestOpenRequiresEngine(t *testing.T) {
	if _, err := Open(Options{}); err != ErrNoEngine {
		t.Errorf("err = %v, want ErrNoEngine", err)
	}
}

func TestSubmitSingleForm(t *testing.T) {
	c := newTestConsole(t, "")
	out, err := c.session.Submit(context.Background(), "(+ 1 2)")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Text != "3" || out.Target != render.TargetInline {
		t.Errorf("output = %q on %s", out.Text, out.Target)
	}
	if len(c.inline.shown) != 1 || c.inline.shown[0] != "3" {
		t.Errorf("inline surface got %v", c.inline.shown)
	}
}

func TestSubmitMultipleFormsReturnsLastValue(t *testing.T) {
	c := newTestConsole(t, "")
	out, err := c.session.Submit(context.Background(), "(setq x 1) (setq y 2) (+ x y)")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Text != "3" {
		t.Errorf("output = %q, want 3", out.Text)
	}
}

func TestSubmitLongOutputGoesAuxiliary(t *testing.T) {
	c := newTestConsole(t, "")
	out, err := c.session.Submit(context.Background(), "(make-string 150 ?x)")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Target != render.TargetAuxiliary {
		t.Errorf("target = %s, want auxiliary", out.Target)
	}
	if len(c.aux.shown) != 1 {
		t.Errorf("auxiliary surface got %v", c.aux.shown)
	}
	if len(c.inline.shown) != 0 {
		t.Errorf("inline surface unexpectedly got %v", c.inline.shown)
	}
}

func TestSubmitErrorShownNotCrashed(t *testing.T) {
	c := newTestConsole(t, "")
	out, err := c.session.Submit(context.Background(), "missing-var")
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	if !strings.Contains(out.Text, "void-variable") {
		t.Errorf("rendered error = %q", out.Text)
	}
	if len(c.inline.shown) != 1 {
		t.Errorf("error not displayed: %v", c.inline.shown)
	}
}

func TestHistoryCapturedEvenOnFailure(t *testing.T) {
	c := newTestConsole(t, "")
	c.session.Submit(context.Background(), "(this will fail")
	got := c.session.History()
	if len(got) != 1 || got[0] != "(this will fail" {
		t.Errorf("history = %v", got)
	}
}

func TestHistoryDedupOnResubmit(t *testing.T) {
	c := newTestConsole(t, "")
	ctx := context.Background()
	c.session.Submit(ctx, "(+ 1 2)")
	c.session.Submit(ctx, "(+ 3 4)")
	c.session.Submit(ctx, "(+ 1 2)")
	got := c.session.History()
	want := []string{"(+ 3 4)", "(+ 1 2)"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("history = %v, want %v", got, want)
	}
}

func TestNavigateHistory(t *testing.T) {
	c := newTestConsole(t, "")
	ctx := context.Background()
	c.session.Submit(ctx, "one")
	c.session.Submit(ctx, "two")
	c.session.Submit(ctx, "three")

	if got, ok := c.session.Navigate(-1); !ok || got != "three" {
		t.Errorf("Navigate(-1) = %q, want three", got)
	}
	if got, _ := c.session.Navigate(-1); got != "two" {
		t.Errorf("Navigate(-1) = %q, want two", got)
	}
	if got, _ := c.session.Navigate(+1); got != "three" {
		t.Errorf("Navigate(+1) = %q, want three", got)
	}
}

func TestNavigateEmptyHistory(t *testing.T) {
	c := newTestConsole(t, "")
	if _, ok := c.session.Navigate(-1); ok {
		t.Error("navigation on empty history should report nothing")
	}
}

func TestHistoryPersistsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	first := newTestConsole(t, path)
	first.session.Submit(context.Background(), "(+ 1 2)")
	if res := first.session.Close(); res.Status != history.SaveOK {
		t.Fatalf("Close: %v", res.Err)
	}

	second := newTestConsole(t, path)
	got := second.session.History() // triggers the lazy load
	if len(got) != 1 || got[0] != "(+ 1 2)" {
		t.Errorf("restored history = %v", got)
	}
}

func TestIdleSessionClosePreservesHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	first := newTestConsole(t, path)
	first.session.Submit(context.Background(), "(+ 1 2)")
	if res := first.session.Close(); res.Status != history.SaveOK {
		t.Fatalf("Close: %v", res.Err)
	}

	// open and close without any submission or history access
	idle := newTestConsole(t, path)
	if res := idle.session.Close(); res.Status != history.SaveOK {
		t.Fatalf("idle Close: %v", res.Err)
	}

	third := newTestConsole(t, path)
	got := third.session.History()
	if len(got) != 1 || got[0] != "(+ 1 2)" {
		t.Errorf("history after idle session = %v, want [(+ 1 2)]", got)
	}
}

func TestClearHistoryPersistsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	c := newTestConsole(t, path)
	c.session.Submit(context.Background(), "(+ 1 2)")
	if res := c.session.ClearHistory(); res.Status != history.SaveOK {
		t.Fatalf("ClearHistory: %v", res.Err)
	}
	if len(c.session.History()) != 0 {
		t.Error("history not cleared in memory")
	}

	reopened := newTestConsole(t, path)
	if got := reopened.session.History(); len(got) != 0 {
		t.Errorf("cleared history came back: %v", got)
	}
}

// reentrantBackend calls back into the session from inside Exec, which
// must hit the pending-submission slot.
type reentrantBackend struct {
	session *Session
	inner   error
}

func (b *reentrantBackend) CountForms(string) int                 { return 1 }
func (b *reentrantBackend) WrapSequence(text string) string       { return text }
func (b *reentrantBackend) Incomplete(string) bool                { return false }
func (b *reentrantBackend) NewReader(text string) eval.FormReader { return &oneShot{text: text} }

type oneShot struct {
	text string
	done bool
}

func (r *oneShot) Read() (string, error) {
	if r.done {
		return "", io.EOF
	}
	r.done = true
	return r.text, nil
}

func (b *reentrantBackend) Exec(ctx context.Context, _ eval.Context, _ string) (eval.Value, error) {
	_, b.inner = b.session.Submit(ctx, "(nested)")
	return nil, nil
}

func TestSingleSubmissionSlot(t *testing.T) {
	backend := &reentrantBackend{}
	s, err := Open(Options{Engine: eval.NewEngine(backend), Context: "buf"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	backend.session = s

	if _, err := s.Submit(context.Background(), "(outer)"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.inner != ErrBusy {
		t.Errorf("nested submit err = %v, want ErrBusy", backend.inner)
	}
}
