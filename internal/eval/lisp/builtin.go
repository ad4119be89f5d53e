package lisp

import (
	"fmt"
	"strings"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

func installBuiltins(env *Env) {
	def := func(name string, fn func(args []eval.Value) (eval.Value, error)) {
		env.Define(Symbol(name), &Builtin{Name: name, Fn: fn})
	}

	def("+", func(args []eval.Value) (eval.Value, error) {
		return foldNumbers("+", args, Integer(0), func(a, b float64) float64 { return a + b })
	})
	def("*", func(args []eval.Value) (eval.Value, error) {
		return foldNumbers("*", args, Integer(1), func(a, b float64) float64 { return a * b })
	})
	def("-", func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("-: wrong number of arguments")
		}
		if len(args) == 1 {
			return foldNumbers("-", args, Integer(0), func(a, b float64) float64 { return a - b })
		}
		return foldNumbers("-", args[1:], args[0], func(a, b float64) float64 { return a - b })
	})
	def("/", func(args []eval.Value) (eval.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("/: wrong number of arguments")
		}
		acc, accInt, err := number("/", args[0])
		if err != nil {
			return nil, err
		}
		allInt := accInt
		for _, a := range args[1:] {
			n, ni, err := number("/", a)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, fmt.Errorf("arith-error: division by zero")
			}
			allInt = allInt && ni
			if allInt {
				// integer division truncates, as elisp does
				acc = float64(int64(acc) / int64(n))
			} else {
				acc = acc / n
			}
		}
		if allInt {
			return Integer(int64(acc)), nil
		}
		return Float(acc), nil
	})
	def("%", func(args []eval.Value) (eval.Value, error) {
		a, b, err := twoIntegers("%", args)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, fmt.Errorf("arith-error: division by zero")
		}
		return Integer(a % b), nil
	})
	def("1+", func(args []eval.Value) (eval.Value, error) {
		return foldNumbers("1+", []eval.Value{Integer(1)}, first(args), func(a, b float64) float64 { return a + b })
	})
	def("1-", func(args []eval.Value) (eval.Value, error) {
		return foldNumbers("1-", []eval.Value{Integer(1)}, first(args), func(a, b float64) float64 { return a - b })
	})

	def("=", compareNumbers(func(a, b float64) bool { return a == b }))
	def("/=", compareNumbers(func(a, b float64) bool { return a != b }))
	def("<", compareNumbers(func(a, b float64) bool { return a < b }))
	def(">", compareNumbers(func(a, b float64) bool { return a > b }))
	def("<=", compareNumbers(func(a, b float64) bool { return a <= b }))
	def(">=", compareNumbers(func(a, b float64) bool { return a >= b }))
	def("max", pickNumber(func(a, b float64) bool { return b > a }))
	def("min", pickNumber(func(a, b float64) bool { return b < a }))

	def("eq", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("eq: wrong number of arguments")
		}
		return FromBool(equalValues(args[0], args[1])), nil
	})
	def("equal", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("equal: wrong number of arguments")
		}
		return FromBool(equalValues(args[0], args[1])), nil
	})
	def("not", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("not: wrong number of arguments")
		}
		return FromBool(!Truthy(args[0])), nil
	})

	def("list", func(args []eval.Value) (eval.Value, error) {
		return List(args), nil
	})
	def("cons", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("cons: wrong number of arguments")
		}
		tail, ok := args[1].(List)
		if !ok {
			if !Truthy(args[1]) {
				tail = nil
			} else {
				return nil, fmt.Errorf("cons: improper tail %s", args[1])
			}
		}
		return append(List{args[0]}, tail...), nil
	})
	def("car", func(args []eval.Value) (eval.Value, error) {
		l, err := listArg("car", args)
		if err != nil {
			return nil, err
		}
		if len(l) == 0 {
			return Nil, nil
		}
		return l[0], nil
	})
	def("cdr", func(args []eval.Value) (eval.Value, error) {
		l, err := listArg("cdr", args)
		if err != nil {
			return nil, err
		}
		if len(l) <= 1 {
			return Nil, nil
		}
		return l[1:], nil
	})
	def("nth", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("nth: wrong number of arguments")
		}
		n, ok := args[0].(Integer)
		if !ok {
			return nil, fmt.Errorf("nth: %s is not an integer", args[0])
		}
		l, err := listArg("nth", args[1:])
		if err != nil {
			return nil, err
		}
		if int(n) < 0 || int(n) >= len(l) {
			return Nil, nil
		}
		return l[n], nil
	})
	def("length", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("length: wrong number of arguments")
		}
		switch v := args[0].(type) {
		case List:
			return Integer(len(v)), nil
		case Str:
			return Integer(len([]rune(string(v)))), nil
		case Symbol:
			if v == Nil {
				return Integer(0), nil
			}
		}
		return nil, fmt.Errorf("length: wrong-type-argument %s", args[0])
	})
	def("append", func(args []eval.Value) (eval.Value, error) {
		var out List
		for _, a := range args {
			l, err := listArg("append", []eval.Value{a})
			if err != nil {
				return nil, err
			}
			out = append(out, l...)
		}
		return out, nil
	})
	def("reverse", func(args []eval.Value) (eval.Value, error) {
		l, err := listArg("reverse", args)
		if err != nil {
			return nil, err
		}
		out := make(List, len(l))
		for i, v := range l {
			out[len(l)-1-i] = v
		}
		return out, nil
	})
	def("make-list", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("make-list: wrong number of arguments")
		}
		n, ok := args[0].(Integer)
		if !ok || n < 0 {
			return nil, fmt.Errorf("make-list: %s is not a non-negative integer", args[0])
		}
		out := make(List, n)
		for i := range out {
			out[i] = args[1]
		}
		return out, nil
	})

	def("concat", func(args []eval.Value) (eval.Value, error) {
		var b strings.Builder
		for _, a := range args {
			switch v := a.(type) {
			case Str:
				b.WriteString(string(v))
			case Symbol:
				if v != Nil {
					return nil, fmt.Errorf("concat: wrong-type-argument %s", a)
				}
			default:
				return nil, fmt.Errorf("concat: wrong-type-argument %s", a)
			}
		}
		return Str(b.String()), nil
	})
	def("make-string", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("make-string: wrong number of arguments")
		}
		n, ok := args[0].(Integer)
		if !ok || n < 0 {
			return nil, fmt.Errorf("make-string: %s is not a non-negative integer", args[0])
		}
		c, ok := args[1].(Integer)
		if !ok {
			return nil, fmt.Errorf("make-string: %s is not a character", args[1])
		}
		return Str(strings.Repeat(string(rune(c)), int(n))), nil
	})
	def("symbol-name", func(args []eval.Value) (eval.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("symbol-name: wrong number of arguments")
		}
		s, ok := args[0].(Symbol)
		if !ok {
			return nil, fmt.Errorf("symbol-name: wrong-type-argument %s", args[0])
		}
		return Str(string(s)), nil
	})
	def("format", func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("format: wrong number of arguments")
		}
		spec, ok := args[0].(Str)
		if !ok {
			return nil, fmt.Errorf("format: wrong-type-argument %s", args[0])
		}
		return Str(formatSpec(string(spec), args[1:])), nil
	})
	def("message", func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("message: wrong number of arguments")
		}
		spec, ok := args[0].(Str)
		if !ok {
			return nil, fmt.Errorf("message: wrong-type-argument %s", args[0])
		}
		return Str(formatSpec(string(spec), args[1:])), nil
	})

	def("funcall", func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("funcall: wrong number of arguments")
		}
		return applyCallable(env, args[0], args[1:])
	})
	def("apply", func(args []eval.Value) (eval.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("apply: wrong number of arguments")
		}
		last, err := listArg("apply", args[len(args)-1:])
		if err != nil {
			return nil, err
		}
		flat := append(append([]eval.Value{}, args[1:len(args)-1]...), last...)
		return applyCallable(env, args[0], flat)
	})

	def("numberp", typePredicate(func(v eval.Value) bool {
		switch v.(type) {
		case Integer, Float:
			return true
		}
		return false
	}))
	def("stringp", typePredicate(func(v eval.Value) bool { _, ok := v.(Str); return ok }))
	def("symbolp", typePredicate(func(v eval.Value) bool { _, ok := v.(Symbol); return ok }))
	def("listp", typePredicate(func(v eval.Value) bool {
		if _, ok := v.(List); ok {
			return true
		}
		s, ok := v.(Symbol)
		return ok && s == Nil
	}))
	def("null", typePredicate(func(v eval.Value) bool { return !Truthy(v) }))
	def("error", func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("error")
		}
		if spec, ok := args[0].(Str); ok {
			return nil, fmt.Errorf("%s", formatSpec(string(spec), args[1:]))
		}
		return nil, fmt.Errorf("%s", args[0])
	})
}

func first(args []eval.Value) eval.Value {
	if len(args) == 0 {
		return Integer(0)
	}
	return args[0]
}

func number(op string, v eval.Value) (float64, bool, error) {
	switch n := v.(type) {
	case Integer:
		return float64(n), true, nil
	case Float:
		return float64(n), false, nil
	default:
		return 0, false, fmt.Errorf("%s: wrong-type-argument number %s", op, v)
	}
}

func foldNumbers(op string, args []eval.Value, init eval.Value, fn func(a, b float64) float64) (eval.Value, error) {
	acc, isInt, err := number(op, init)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		n, ni, err := number(op, a)
		if err != nil {
			return nil, err
		}
		acc = fn(acc, n)
		isInt = isInt && ni
	}
	if isInt && acc == float64(int64(acc)) {
		return Integer(int64(acc)), nil
	}
	return Float(acc), nil
}

func compareNumbers(cmp func(a, b float64) bool) func(args []eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("comparison: wrong number of arguments")
		}
		prev, _, err := number("comparison", args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, _, err := number("comparison", a)
			if err != nil {
				return nil, err
			}
			if !cmp(prev, n) {
				return Nil, nil
			}
			prev = n
		}
		return True, nil
	}
}

func pickNumber(better func(a, b float64) bool) func(args []eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("wrong number of arguments")
		}
		best := args[0]
		bestN, _, err := number("min/max", best)
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, _, err := number("min/max", a)
			if err != nil {
				return nil, err
			}
			if better(bestN, n) {
				best, bestN = a, n
			}
		}
		return best, nil
	}
}

func twoIntegers(op string, args []eval.Value) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s: wrong number of arguments", op)
	}
	a, ok := args[0].(Integer)
	if !ok {
		return 0, 0, fmt.Errorf("%s: wrong-type-argument integer %s", op, args[0])
	}
	b, ok := args[1].(Integer)
	if !ok {
		return 0, 0, fmt.Errorf("%s: wrong-type-argument integer %s", op, args[1])
	}
	return int64(a), int64(b), nil
}

func listArg(op string, args []eval.Value) (List, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: wrong number of arguments", op)
	}
	switch v := args[0].(type) {
	case List:
		return v, nil
	case Symbol:
		if v == Nil {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%s: wrong-type-argument list %s", op, args[0])
}

func typePredicate(pred func(eval.Value) bool) func(args []eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments")
		}
		return FromBool(pred(args[0])), nil
	}
}

func equalValues(a, b eval.Value) bool {
	la, aok := a.(List)
	lb, bok := b.(List)
	if aok && bok {
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !equalValues(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	// nil and the empty list are the same object
	if !Truthy(a) && !Truthy(b) {
		return true
	}
	return a == b
}

// applyCallable resolves symbols through env and invokes builtins and
// lambdas. Used by funcall and apply, which receive their target as a
// value rather than in function position.
func applyCallable(env *Env, fn eval.Value, args []eval.Value) (eval.Value, error) {
	if sym, ok := fn.(Symbol); ok {
		resolved, bound := env.Get(sym)
		if !bound {
			return nil, fmt.Errorf("void-function %s", sym)
		}
		fn = resolved
	}
	in := &Interp{}
	return in.apply(fn, args)
}

// formatSpec implements the %s/%d/%f/%S subset of elisp format strings.
func formatSpec(spec string, args []eval.Value) string {
	var b strings.Builder
	argi := 0
	next := func() eval.Value {
		if argi < len(args) {
			v := args[argi]
			argi++
			return v
		}
		return Nil
	}
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if c != '%' || i+1 >= len(spec) {
			b.WriteByte(c)
			continue
		}
		i++
		switch spec[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			v := next()
			if s, ok := v.(Str); ok {
				b.WriteString(string(s))
			} else {
				b.WriteString(v.String())
			}
		case 'S':
			b.WriteString(next().String())
		case 'd':
			v := next()
			if n, _, err := number("format", v); err == nil {
				fmt.Fprintf(&b, "%d", int64(n))
			} else {
				b.WriteString(v.String())
			}
		case 'f':
			v := next()
			if n, _, err := number("format", v); err == nil {
				fmt.Fprintf(&b, "%f", n)
			} else {
				b.WriteString(v.String())
			}
		default:
			b.WriteByte('%')
			b.WriteByte(spec[i])
		}
	}
	return b.String()
}
