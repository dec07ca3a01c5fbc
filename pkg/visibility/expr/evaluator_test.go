package expr

import (
	"testing"

	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

func TestEvaluator_Rules(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{Values: map[string]any{
		"department_id": "dept-arcade",
		"type":          model.JobTypeSetup,
		"slots":         "3",
		"extra15":       false,
		"job": map[string]any{
			"is_new": true,
			"name":   "Cabinet Unload",
		},
	}}

	cases := []struct {
		rule string
		want bool
	}{
		{"", true},
		{`department_id == "dept-arcade"`, true},
		{`department_id == 'dept-arcade'`, true},
		{`department_id != "dept-arcade"`, false},
		{`department_id == "dept-stops"`, false},
		{`type == "setup"`, true},
		{`type in ("setup", "teardown")`, true},
		{`type in ("regular")`, false},
		{`slots == 3`, true},
		{`slots != 2`, true},
		{`extra15 == false`, true},
		{`!extra15`, true},
		{`job.is_new`, true},
		{`job.is_new == true && job.name == "Cabinet Unload"`, true},
		{`missing`, false},
		{`missing == null`, true},
		{`department_id == "x" || (type == "setup" && !extra15)`, true},
		{`!(type == "setup")`, false},
		{`"dept-arcade" == department_id`, true},
	}

	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluator_SyntaxErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		`department_id ==`,
		`(type == "setup"`,
		`type == "setup`,
		`type in "setup"`,
		`type == "a" "b"`,
		`slots > 1`,
	} {
		if _, err := eval.Eval(rule, visibility.Context{}); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
		if err := eval.Compile(rule); err == nil {
			t.Fatalf("expected compile error for %q", rule)
		}
	}
}

func TestEvaluator_CachesCompiledRules(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `department_id == "a"`
	if _, err := eval.Eval(rule, visibility.Context{}); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if _, ok := eval.cache.Load(rule); !ok {
		t.Fatalf("expected rule to be cached")
	}

	ok, err := eval.Eval(rule, visibility.Context{Values: map[string]any{"department_id": "a"}})
	if err != nil || !ok {
		t.Fatalf("cached rule should evaluate against new context, got %v (%v)", ok, err)
	}
}
