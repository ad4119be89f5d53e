// Package luaeval is the Lua expression backend, bridging the console to
// gopher-lua. Each execution context owns an isolated Lua state created on
// first use.
//
// Lua needs no sequence wrapper: a chunk already executes its statements
// in order, so WrapSequence is the identity and the whole submission is
// executed as one chunk. To surface the last expression's value the chunk
// is first compiled as "return <text>"; when that fails to compile (the
// text is a statement, not an expression) the chunk runs as written and
// the result is nil.
package luaeval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

// ErrClosed is returned when evaluating against a closed backend.
var ErrClosed = errors.New("lua backend is closed")

// Backend implements eval.Evaluator over gopher-lua states.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes all
// state access, matching the console's one-submission-at-a-time model.
type Backend struct {
	mu     sync.Mutex
	states map[eval.Context]*lua.LState
	closed bool
}

// New creates a Backend with no states yet.
func New() *Backend {
	return &Backend{states: make(map[eval.Context]*lua.LState)}
}

// Close shuts down every Lua state. The backend cannot be used afterward.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, L := range b.states {
		L.Close()
	}
	b.states = nil
	b.closed = true
}

// CountForms reports the number of top-level statements in text according
// to Lua's own parser. Unparseable text counts as zero forms.
func (b *Backend) CountForms(text string) int {
	chunk, err := parse.Parse(strings.NewReader(text), "console")
	if err != nil {
		return 0
	}
	return len(chunk)
}

// WrapSequence is the identity: a Lua chunk already runs its statements in
// document order.
func (b *Backend) WrapSequence(text string) string { return text }

// Incomplete reports whether text is a syntactically unfinished chunk.
// gopher-lua marks errors raised at end of input with a MaxInt64 line,
// which is how its own REPL detects continuation lines.
func (b *Backend) Incomplete(text string) bool {
	_, err := parse.Parse(strings.NewReader(text), "console")
	var perr *parse.Error
	if errors.As(err, &perr) {
		return perr.Pos.Line == math.MaxInt64
	}
	return false
}

// chunkReader yields the whole submission as a single form.
type chunkReader struct {
	text string
	done bool
}

func (r *chunkReader) Read() (string, error) {
	if r.done || strings.TrimSpace(r.text) == "" {
		return "", io.EOF
	}
	r.done = true
	return r.text, nil
}

// NewReader implements eval.Evaluator.
func (b *Backend) NewReader(text string) eval.FormReader {
	return &chunkReader{text: text}
}

// Exec runs one chunk against the state bound to ec and returns the value
// of its final expression, or nil for pure statements.
func (b *Backend) Exec(ctx context.Context, ec eval.Context, form string) (eval.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return execChunk(b.stateFor(ec), form)
}

func (b *Backend) stateFor(ec eval.Context) *lua.LState {
	L, ok := b.states[ec]
	if !ok {
		L = lua.NewState()
		b.states[ec] = L
	}
	return L
}

// execChunk compiles and runs form with panic recovery, since Lua code can
// panic through misbehaving Go functions registered on the state.
func execChunk(L *lua.LState, form string) (v eval.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch p := r.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("lua panic: %v", p)
			}
		}
	}()

	fn, cerr := L.LoadString("return " + form)
	if cerr != nil {
		fn, cerr = L.LoadString(form)
		if cerr != nil {
			return nil, cerr
		}
	}

	base := L.GetTop()
	L.Push(fn)
	if perr := L.PCall(0, 1, nil); perr != nil {
		return nil, perr
	}
	lv := L.Get(-1)
	L.SetTop(base)
	return Value{LV: lv}, nil
}

// Value wraps a Lua value for the renderer.
type Value struct {
	LV lua.LValue
}

// String renders the value in Lua literal style. Tables print their
// contents rather than an address; a visited set breaks self-reference so
// printing always terminates.
func (v Value) String() string {
	return luaString(v.LV, make(map[*lua.LTable]bool))
}

func luaString(lv lua.LValue, visited map[*lua.LTable]bool) string {
	switch val := lv.(type) {
	case lua.LString:
		return strconv.Quote(string(val))
	case *lua.LTable:
		if visited[val] {
			return "{...}"
		}
		visited[val] = true
		return tableString(val, visited)
	case *lua.LNilType, nil:
		return "nil"
	default:
		return lv.String()
	}
}

func tableString(t *lua.LTable, visited map[*lua.LTable]bool) string {
	var arr []string
	n := t.Len()
	for i := 1; i <= n; i++ {
		arr = append(arr, luaString(t.RawGetInt(i), visited))
	}

	var keyed []string
	t.ForEach(func(k, val lua.LValue) {
		if kn, ok := k.(lua.LNumber); ok {
			if i := int(kn); float64(i) == float64(kn) && i >= 1 && i <= n {
				return // already in the array part
			}
		}
		keyed = append(keyed, fmt.Sprintf("%s = %s", k.String(), luaString(val, visited)))
	})
	sort.Strings(keyed)

	return "{" + strings.Join(append(arr, keyed...), ", ") + "}"
}
