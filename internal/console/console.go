// Package console ties the pieces of the expression console together: one
// session owns the bound execution context, the evaluation engine, the
// history ring, and the display surfaces.
//
// A session holds a single pending-submission slot. The execution context
// is captured when the session opens and used for every evaluation until
// the session closes. Submitted text is always captured to history,
// whether or not evaluation succeeds.
package console

import (
	"context"
	"errors"
	"sync"

	"github.com/KarimAziev/elisp-eval/internal/eval"
	"github.com/KarimAziev/elisp-eval/internal/history"
	"github.com/KarimAziev/elisp-eval/internal/render"
)

// Session errors.
var (
	// ErrBusy is returned when a submission arrives while another is
	// still being evaluated; the console accepts one at a time.
	ErrBusy = errors.New("a submission is already being evaluated")

	// ErrNoEngine is returned when a session is opened without an
	// evaluation engine.
	ErrNoEngine = errors.New("session requires an evaluation engine")
)

// Surface displays rendered text. The presentation layer supplies both
// the inline and the auxiliary implementation.
type Surface interface {
	Show(text string)
}

// Options configure a session.
type Options struct {
	// Engine evaluates submissions. Required.
	Engine *eval.Engine

	// Context is the execution target bound for the session's lifetime.
	Context eval.Context

	// HistoryPath is the persistence file. Empty disables persistence.
	HistoryPath string

	// HistoryMax bounds the ring; non-positive uses the default.
	HistoryMax int

	// Inline and Auxiliary are the display surfaces. Either may be nil,
	// in which case output for that surface is dropped.
	Inline    Surface
	Auxiliary Surface
}

// Session is one console session. All methods are safe for use from a
// single goroutine; the mutex exists to make the pending-submission slot
// and history mutations atomic, not to support concurrent evaluation.
type Session struct {
	mu sync.Mutex

	engine  *eval.Engine
	execCtx eval.Context

	ring        *history.Ring
	historyPath string
	loaded      bool

	busy bool

	inline    Surface
	auxiliary Surface
}

// Open creates a session, capturing the execution context for its whole
// lifetime. History is not read here; it loads lazily on first use.
func Open(opts Options) (*Session, error) {
	if opts.Engine == nil {
		return nil, ErrNoEngine
	}
	return &Session{
		engine:      opts.Engine,
		execCtx:     opts.Context,
		ring:        history.NewRing(opts.HistoryMax),
		historyPath: opts.HistoryPath,
		inline:      opts.Inline,
		auxiliary:   opts.Auxiliary,
	}, nil
}

// Context returns the execution context bound at open time.
func (s *Session) Context() eval.Context { return s.execCtx }

// ensureHistory performs the lazy one-time load of persisted history.
// Caller holds s.mu.
func (s *Session) ensureHistory() {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.historyPath != "" && s.ring.Len() == 0 {
		s.ring.Load(s.historyPath)
	}
}

// Submit evaluates text against the session's execution context, records
// it in history, renders the result or error, and routes it to the
// matching display surface. The raw text is captured to history before
// evaluation, so failed submissions can be replayed too.
func (s *Session) Submit(ctx context.Context, text string) (render.Output, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return render.Output{}, ErrBusy
	}
	s.busy = true
	s.ensureHistory()
	s.ring.Push(text)
	s.ring.EnforceBound()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	value, err := s.engine.Evaluate(ctx, s.execCtx, text)
	if err != nil {
		out := render.RenderError(err)
		s.display(out)
		return out, err
	}
	out := render.Render(value)
	s.display(out)
	return out, nil
}

func (s *Session) display(out render.Output) {
	target := s.inline
	if out.Target == render.TargetAuxiliary {
		target = s.auxiliary
	}
	if target != nil {
		target.Show(out.Text)
	}
}

// Navigate moves through history (-1 previous, +1 next) with circular
// wraparound, returning the entry at the new cursor position. The second
// result is false when history is empty.
func (s *Session) Navigate(direction int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureHistory()
	return s.ring.Navigate(direction)
}

// History returns the recorded submissions, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureHistory()
	return s.ring.Entries()
}

// SaveHistory persists the ring to the configured path. The lazy load
// runs first, so a session that never touched history writes back what
// the file already held instead of truncating it.
func (s *Session) SaveHistory() history.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyPath == "" {
		return history.SaveResult{Status: history.SaveSkipped}
	}
	s.ensureHistory()
	return s.ring.Save(s.historyPath)
}

// ClearHistory empties the ring and persists the empty state.
func (s *Session) ClearHistory() history.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true // an explicit clear must not be undone by a lazy load
	if s.historyPath == "" {
		s.ring.Clear()
		return history.SaveResult{Status: history.SaveSkipped}
	}
	return s.ring.Cleanup(s.historyPath)
}

// Close saves history and releases the session. The execution context
// does not survive close.
func (s *Session) Close() history.SaveResult {
	return s.SaveHistory()
}
