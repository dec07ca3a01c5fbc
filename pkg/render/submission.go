package render

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Hidden input names shared by every admin form.
const (
	CSRFFieldName = "csrf_token"
	IDFieldName   = "id"
)

// HiddenField is a hidden form input emitted alongside the visible controls.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken builds the hidden field carrying the anti-forgery token.
func CSRFToken(token string) HiddenField {
	return Hidden(CSRFFieldName, token)
}

// IDField builds the hidden field carrying the record id a form acts on.
func IDField(id string) HiddenField {
	return Hidden(IDFieldName, id)
}

// CSRFProvider hands out the anti-forgery token for the current request.
type CSRFProvider interface {
	CSRFToken(ctx context.Context) string
}

// CSRFProviderFunc adapts a function to CSRFProvider.
type CSRFProviderFunc func(ctx context.Context) string

// CSRFToken implements CSRFProvider.
func (f CSRFProviderFunc) CSRFToken(ctx context.Context) string {
	if f == nil {
		return ""
	}
	return f(ctx)
}

// StaticCSRF always returns token. Handy for previews and tests.
func StaticCSRF(token string) CSRFProvider {
	return CSRFProviderFunc(func(context.Context) string { return token })
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields flattens fields into a name-sorted slice for
// deterministic markup.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  strings.TrimSpace(name),
			Value: fields[name],
		})
	}
	return result
}
