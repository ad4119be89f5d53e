// Package lisp is the built-in expression backend: a small elisp-flavored
// evaluator covering the forms an interactive console submits — variable
// assignment, arithmetic, list manipulation, conditionals, and lambdas.
// It is not a general-purpose interpreter; anything heavier belongs in an
// external backend behind the eval.Evaluator interface.
package lisp

import (
	"context"
	"fmt"
	"sync"

	"github.com/KarimAziev/elisp-eval/internal/eval"
	"github.com/KarimAziev/elisp-eval/internal/sexp"
)

// Interp evaluates forms against per-context global environments. Each
// execution context gets its own environment the first time it is used, so
// state set from one buffer's console never leaks into another's.
type Interp struct {
	mu   sync.Mutex
	envs map[eval.Context]*Env
}

// New creates an interpreter with no environments yet; they are created
// lazily per execution context.
func New() *Interp {
	return &Interp{envs: make(map[eval.Context]*Env)}
}

// CountForms implements eval.Evaluator using the s-expression segmenter.
func (in *Interp) CountForms(text string) int {
	return sexp.CountForms(text)
}

// WrapSequence wraps multi-form text in progn so the forms execute in
// document order and the construct's value is the last form's value.
func (in *Interp) WrapSequence(text string) string {
	return "(progn\n" + text + "\n)"
}

// Incomplete implements the continuation probe via the segmenter.
func (in *Interp) Incomplete(text string) bool {
	return sexp.Incomplete(text)
}

// formReader adapts sexp.Reader to the engine's FormReader.
type formReader struct {
	r *sexp.Reader
}

func (fr *formReader) Read() (string, error) {
	form, err := fr.r.Read()
	if err != nil {
		return "", err
	}
	return form.Text, nil
}

// NewReader implements eval.Evaluator.
func (in *Interp) NewReader(text string) eval.FormReader {
	return &formReader{r: sexp.NewReader(text)}
}

// Exec parses and evaluates a single form against the environment bound to
// ec.
func (in *Interp) Exec(ctx context.Context, ec eval.Context, form string) (eval.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expr, err := Parse(form)
	if err != nil {
		return nil, err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.evalExpr(in.envFor(ec), expr)
}

func (in *Interp) envFor(ec eval.Context) *Env {
	env, ok := in.envs[ec]
	if !ok {
		env = NewEnv(nil)
		installBuiltins(env)
		in.envs[ec] = env
	}
	return env
}

func (in *Interp) evalExpr(env *Env, expr eval.Value) (eval.Value, error) {
	switch v := expr.(type) {
	case Integer, Float, Str, *Builtin, *Lambda:
		return v, nil
	case Symbol:
		if v == Nil || v == True {
			return v, nil
		}
		if val, ok := env.Get(v); ok {
			return val, nil
		}
		return nil, fmt.Errorf("void-variable %s", v)
	case List:
		if len(v) == 0 {
			return Nil, nil
		}
		return in.evalList(env, v)
	default:
		// foreign value from another backend; self-evaluating
		return v, nil
	}
}

func (in *Interp) evalList(env *Env, form List) (eval.Value, error) {
	if head, ok := form[0].(Symbol); ok {
		switch head {
		case "quote", "function":
			if len(form) != 2 {
				return nil, fmt.Errorf("wrong number of arguments: %s", head)
			}
			return form[1], nil
		case "progn":
			return in.evalSeq(env, form[1:])
		case "setq":
			return in.evalSetq(env, form[1:])
		case "defvar":
			return in.evalDefvar(env, form[1:])
		case "let", "let*":
			return in.evalLet(env, form, head == "let*")
		case "if":
			return in.evalIf(env, form)
		case "when", "unless":
			return in.evalWhenUnless(env, form, head == "unless")
		case "cond":
			return in.evalCond(env, form[1:])
		case "and":
			return in.evalAnd(env, form[1:])
		case "or":
			return in.evalOr(env, form[1:])
		case "while":
			return in.evalWhile(env, form)
		case "lambda":
			return makeLambda(env, form)
		case "defun":
			return in.evalDefun(env, form)
		}
	}

	fn, err := in.evalExpr(env, form[0])
	if err != nil {
		return nil, err
	}
	args := make([]eval.Value, 0, len(form)-1)
	for _, arg := range form[1:] {
		v, err := in.evalExpr(env, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return in.apply(fn, args)
}

func (in *Interp) apply(fn eval.Value, args []eval.Value) (eval.Value, error) {
	switch f := fn.(type) {
	case *Builtin:
		return f.Fn(args)
	case *Lambda:
		if len(args) != len(f.Params) {
			return nil, fmt.Errorf("wrong number of arguments: lambda takes %d, got %d", len(f.Params), len(args))
		}
		local := NewEnv(f.Env)
		for i, p := range f.Params {
			local.Define(p, args[i])
		}
		return in.evalSeq(local, f.Body)
	case Symbol:
		// function position symbol resolved through the environment
		return nil, fmt.Errorf("void-function %s", f)
	default:
		return nil, fmt.Errorf("invalid-function %s", fn)
	}
}

func (in *Interp) evalSeq(env *Env, body []eval.Value) (eval.Value, error) {
	var last eval.Value = Nil
	for _, expr := range body {
		v, err := in.evalExpr(env, expr)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interp) evalSetq(env *Env, pairs []eval.Value) (eval.Value, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("setq: odd number of arguments")
	}
	var last eval.Value = Nil
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(Symbol)
		if !ok {
			return nil, fmt.Errorf("setq: %s is not a symbol", pairs[i])
		}
		v, err := in.evalExpr(env, pairs[i+1])
		if err != nil {
			return nil, err
		}
		env.Set(name, v)
		last = v
	}
	return last, nil
}

func (in *Interp) evalDefvar(env *Env, rest []eval.Value) (eval.Value, error) {
	if len(rest) == 0 || len(rest) > 3 {
		return nil, fmt.Errorf("defvar: wrong number of arguments")
	}
	name, ok := rest[0].(Symbol)
	if !ok {
		return nil, fmt.Errorf("defvar: %s is not a symbol", rest[0])
	}
	// defvar leaves an existing binding alone
	if _, bound := env.Get(name); !bound && len(rest) > 1 {
		v, err := in.evalExpr(env, rest[1])
		if err != nil {
			return nil, err
		}
		env.Set(name, v)
	}
	return name, nil
}

func (in *Interp) evalLet(env *Env, form List, sequential bool) (eval.Value, error) {
	if len(form) < 2 {
		return nil, fmt.Errorf("let: missing binding list")
	}
	bindings, ok := form[1].(List)
	if !ok {
		return nil, fmt.Errorf("let: %s is not a binding list", form[1])
	}
	local := NewEnv(env)
	evalEnv := env
	if sequential {
		evalEnv = local
	}
	for _, b := range bindings {
		switch binding := b.(type) {
		case Symbol:
			local.Define(binding, Nil)
		case List:
			if len(binding) != 2 {
				return nil, fmt.Errorf("let: malformed binding %s", binding)
			}
			name, ok := binding[0].(Symbol)
			if !ok {
				return nil, fmt.Errorf("let: %s is not a symbol", binding[0])
			}
			v, err := in.evalExpr(evalEnv, binding[1])
			if err != nil {
				return nil, err
			}
			local.Define(name, v)
		default:
			return nil, fmt.Errorf("let: malformed binding %s", b)
		}
	}
	return in.evalSeq(local, form[2:])
}

func (in *Interp) evalIf(env *Env, form List) (eval.Value, error) {
	if len(form) < 3 {
		return nil, fmt.Errorf("if: wrong number of arguments")
	}
	cond, err := in.evalExpr(env, form[1])
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return in.evalExpr(env, form[2])
	}
	return in.evalSeq(env, form[3:])
}

func (in *Interp) evalWhenUnless(env *Env, form List, negate bool) (eval.Value, error) {
	if len(form) < 2 {
		return nil, fmt.Errorf("%s: missing condition", form[0])
	}
	cond, err := in.evalExpr(env, form[1])
	if err != nil {
		return nil, err
	}
	if Truthy(cond) != negate {
		return in.evalSeq(env, form[2:])
	}
	return Nil, nil
}

func (in *Interp) evalCond(env *Env, clauses []eval.Value) (eval.Value, error) {
	for _, c := range clauses {
		clause, ok := c.(List)
		if !ok || len(clause) == 0 {
			return nil, fmt.Errorf("cond: malformed clause %s", c)
		}
		test, err := in.evalExpr(env, clause[0])
		if err != nil {
			return nil, err
		}
		if Truthy(test) {
			if len(clause) == 1 {
				return test, nil
			}
			return in.evalSeq(env, clause[1:])
		}
	}
	return Nil, nil
}

func (in *Interp) evalAnd(env *Env, rest []eval.Value) (eval.Value, error) {
	var last eval.Value = True
	for _, expr := range rest {
		v, err := in.evalExpr(env, expr)
		if err != nil {
			return nil, err
		}
		if !Truthy(v) {
			return Nil, nil
		}
		last = v
	}
	return last, nil
}

func (in *Interp) evalOr(env *Env, rest []eval.Value) (eval.Value, error) {
	for _, expr := range rest {
		v, err := in.evalExpr(env, expr)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
	}
	return Nil, nil
}

// maxIterations bounds while loops so a runaway submission cannot hang the
// console forever.
const maxIterations = 10_000_000

func (in *Interp) evalWhile(env *Env, form List) (eval.Value, error) {
	if len(form) < 2 {
		return nil, fmt.Errorf("while: missing condition")
	}
	for i := 0; i < maxIterations; i++ {
		cond, err := in.evalExpr(env, form[1])
		if err != nil {
			return nil, err
		}
		if !Truthy(cond) {
			return Nil, nil
		}
		if _, err := in.evalSeq(env, form[2:]); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("while: iteration limit exceeded")
}

func makeLambda(env *Env, form List) (eval.Value, error) {
	if len(form) < 2 {
		return nil, fmt.Errorf("lambda: missing parameter list")
	}
	paramList, ok := form[1].(List)
	if !ok {
		return nil, fmt.Errorf("lambda: %s is not a parameter list", form[1])
	}
	params := make([]Symbol, len(paramList))
	for i, p := range paramList {
		sym, ok := p.(Symbol)
		if !ok {
			return nil, fmt.Errorf("lambda: %s is not a symbol", p)
		}
		params[i] = sym
	}
	return &Lambda{Params: params, Body: form[2:], Env: env}, nil
}

func (in *Interp) evalDefun(env *Env, form List) (eval.Value, error) {
	if len(form) < 3 {
		return nil, fmt.Errorf("defun: wrong number of arguments")
	}
	name, ok := form[1].(Symbol)
	if !ok {
		return nil, fmt.Errorf("defun: %s is not a symbol", form[1])
	}
	fn, err := makeLambda(env, append(List{Symbol("lambda")}, form[2:]...))
	if err != nil {
		return nil, err
	}
	env.Set(name, fn)
	return name, nil
}
