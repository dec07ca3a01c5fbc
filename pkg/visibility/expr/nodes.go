package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

type node interface {
	eval(ctx visibility.Context) (any, error)
}

type identNode string

func (n identNode) eval(ctx visibility.Context) (any, error) {
	v, _ := ctx.Lookup(string(n))
	return v, nil
}

type literalNode struct{ value any }

func (n literalNode) eval(visibility.Context) (any, error) { return n.value, nil }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (any, error) {
	v, err := n.inner.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (any, error) {
	l, err := n.left.eval(ctx)
	if err != nil || !truthy(l) {
		return false, err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(r), nil
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (any, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if truthy(l) {
		return true, nil
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(r), nil
}

type eqNode struct {
	left, right node
	negate      bool
}

func (n eqNode) eval(ctx visibility.Context) (any, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	return equal(l, r) != n.negate, nil
}

type inNode struct {
	needle node
	list   []node
}

func (n inNode) eval(ctx visibility.Context) (any, error) {
	v, err := n.needle.eval(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range n.list {
		candidate, err := item.eval(ctx)
		if err != nil {
			return nil, err
		}
		if equal(v, candidate) {
			return true, nil
		}
	}
	return false, nil
}

// equal compares a context value with a literal, coercing the context side
// to the literal's type so form values (always strings) compare naturally.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch want := b.(type) {
	case bool:
		got, ok := asBool(a)
		return ok && got == want
	case float64:
		got, ok := asNumber(a)
		return ok && got == want
	}
	switch want := a.(type) {
	case bool:
		got, ok := asBool(b)
		return ok && got == want
	case float64:
		got, ok := asNumber(b)
		return ok && got == want
	}
	return asString(a) == asString(b)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return t == "on", t == "on"
		}
		return b, true
	default:
		return truthy(v), true
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
