package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorMapping splits error messages into field-level and form-level groups
// keyed by form field name.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Options converts the mapping into the RenderOptions.Errors shape, with form
// level messages stored under FormErrorsKey.
func (m ErrorMapping) Options() map[string][]string {
	if len(m.Fields) == 0 && len(m.Form) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m.Fields)+1)
	for name, messages := range m.Fields {
		out[name] = append([]string(nil), messages...)
	}
	if len(m.Form) > 0 {
		out[FormErrorsKey] = append([]string(nil), m.Form...)
	}
	return out
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload assigns each payload entry to one of fields. Keys may use
// request wrappers or pointer syntax ("body.name", "/name", "name[0]"); keys
// that match no field become form-level errors so messages are not lost.
func MapErrorPayload(fields []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	for rawKey, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		name := matchField(rawKey, known)
		if name == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapValidationErrors turns a validator failure into per-field messages. The
// field key is the validator's Field() name, so validators should register a
// tag name func that returns form names. labels supplies human names for
// messages; missing labels fall back to the field key. Errors that are not
// validator.ValidationErrors become a single form-level message.
func MapValidationErrors(err error, labels map[string]string) ErrorMapping {
	var mapping ErrorMapping
	if err == nil {
		return mapping
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		mapping.Form = []string{err.Error()}
		return mapping
	}

	mapping.Fields = make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		label := labels[name]
		if label == "" {
			label = name
		}
		mapping.Fields[name] = append(mapping.Fields[name], validationMessage(label, fe))
	}
	return mapping
}

func validationMessage(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func matchField(raw string, known map[string]struct{}) string {
	if isFormLevelKey(raw) {
		return ""
	}
	segments := parsePathSegments(raw)
	for len(segments) > 0 {
		if isWrapperSegment(segments[0]) {
			segments = segments[1:]
			continue
		}
		break
	}
	for _, segment := range segments {
		if _, ok := known[segment]; ok {
			return segment
		}
	}
	return ""
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func isWrapperSegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "body", "request", "payload", "data", "form":
		return true
	default:
		return false
	}
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", FormErrorsKey, "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
