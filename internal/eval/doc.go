// Package eval turns submitted console text into a single executed unit.
//
// The package owns no interpreter. A backend implementing Evaluator (the
// built-in Lisp in eval/lisp, the Lua bridge in eval/luaeval, or a test
// double) supplies segmentation, sequencing, and execution; the Engine only
// decides how the pieces combine:
//
//	engine := eval.NewEngine(backend)
//	value, err := engine.Evaluate(ctx, "*scratch*", "(setq x 1) (+ x 2)")
//
// Text with more than one top-level form is wrapped in the backend's
// ordered-sequence construct so every form runs in document order and the
// unit's value is the last form's value. A single form passes through
// untouched, preserving top-level definition semantics a synthetic wrapper
// could alter.
package eval
