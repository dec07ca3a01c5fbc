package render

import (
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeContext is the template-facing projection of a theme config.
type ThemeContext struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant"`
	Tokens       map[string]string `json:"tokens"`
	CSSVars      map[string]string `json:"css_vars"`
	CSSVarsStyle string            `json:"css_vars_style"`
}

// BuildThemeContext copies cfg into a ThemeContext. A nil config yields the
// zero value, which layouts treat as "no theme".
func BuildThemeContext(cfg *theme.RendererConfig) ThemeContext {
	if cfg == nil {
		return ThemeContext{}
	}
	ctx := ThemeContext{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = CSSVarsStyle(ctx.CSSVars)
	return ctx
}

// CSSVarsStyle renders vars as a :root rule with keys in sorted order. Keys
// missing the leading "--" get it added.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(vars[key]))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	return maps.Clone(in)
}
