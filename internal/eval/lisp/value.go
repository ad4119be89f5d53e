package lisp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

// Value kinds produced by the built-in evaluator. Every kind implements
// eval.Value; String is the canonical single-line print with no depth or
// length truncation.

// Symbol is an interned name. The symbols nil and t evaluate to
// themselves.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Integer is a whole number.
type Integer int64

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating-point number.
type Float float64

func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Str is a string literal. It prints in readable (quoted) form.
type Str string

func (s Str) String() string { return strconv.Quote(string(s)) }

// List is a proper list of values. The empty list prints as nil.
type List []eval.Value

func (l List) String() string {
	if len(l) == 0 {
		return "nil"
	}
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// prettyWidth is the column beyond which a list breaks across lines.
const prettyWidth = 60

// Pretty renders the list across multiple lines once the single-line form
// grows past prettyWidth. Used by the result renderer before falling back
// to String.
func (l List) Pretty() (string, error) {
	return prettyValue(l, 0), nil
}

func prettyValue(v eval.Value, indent int) string {
	l, ok := v.(List)
	if !ok || len(l) == 0 {
		return v.String()
	}
	flat := l.String()
	if len(flat) <= prettyWidth {
		return flat
	}
	pad := strings.Repeat(" ", indent+1)
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(prettyValue(l[0], indent+1))
	for _, elem := range l[1:] {
		b.WriteString("\n" + pad)
		b.WriteString(prettyValue(elem, indent+1))
	}
	b.WriteString(")")
	return b.String()
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Name string
	Fn   func(args []eval.Value) (eval.Value, error)
}

func (b *Builtin) String() string { return fmt.Sprintf("#<subr %s>", b.Name) }

// Lambda is a user-defined function closing over its definition
// environment.
type Lambda struct {
	Params []Symbol
	Body   []eval.Value
	Env    *Env
}

func (l *Lambda) String() string {
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("#<lambda (%s)>", strings.Join(params, " "))
}

// Canonical atoms.
var (
	Nil  = Symbol("nil")
	True = Symbol("t")
)

// FromBool converts a Go bool to t or nil.
func FromBool(b bool) eval.Value {
	if b {
		return True
	}
	return Nil
}

// Truthy reports elisp truthiness: everything except nil is true.
func Truthy(v eval.Value) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(Symbol); ok && s == Nil {
		return false
	}
	if l, ok := v.(List); ok && len(l) == 0 {
		return false
	}
	return true
}

// Env is a chain of variable bindings. Set walks the chain and assigns to
// the nearest binding, creating a global one when no binding exists, which
// is what setq does at top level.
type Env struct {
	vars   map[Symbol]eval.Value
	parent *Env
}

// NewEnv creates an environment with the given parent, or a root
// environment when parent is nil.
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[Symbol]eval.Value), parent: parent}
}

// Get resolves name through the chain.
func (e *Env) Get(name Symbol) (eval.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set assigns to the nearest existing binding of name, or defines name at
// the root when unbound.
func (e *Env) Set(name Symbol, v eval.Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return
		}
	}
	root := e
	for root.parent != nil {
		root = root.parent
	}
	root.vars[name] = v
}

// Define binds name in this environment only.
func (e *Env) Define(name Symbol, v eval.Value) {
	e.vars[name] = v
}
