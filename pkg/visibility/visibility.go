// Package visibility decides whether parts of a page are shown, based on
// small boolean rules evaluated against the current form values.
package visibility

import (
	"strings"
)

// Evaluator reports whether rule holds for ctx. An empty rule holds.
type Evaluator interface {
	Eval(rule string, ctx Context) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule string, ctx Context) (bool, error) {
	return fn(rule, ctx)
}

// Context holds the values rules read. Nested maps are addressed with dot
// paths ("job.department_id").
type Context struct {
	Values map[string]any
}

// Lookup resolves a dot path. An exact key match wins over traversal.
func (c Context) Lookup(path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" || len(c.Values) == 0 {
		return nil, false
	}
	if v, ok := c.Values[path]; ok {
		return v, true
	}

	var current any = c.Values
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}
