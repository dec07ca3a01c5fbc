package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions carry per-request data renderers fold into their output
// without touching the view itself.
type RenderOptions struct {
	// Values overrides view values by form field name, used to echo back a
	// rejected submission.
	Values map[string]any
	// Errors holds validation feedback keyed by form field name. Messages
	// under FormErrorsKey are shown above the form.
	Errors map[string][]string
	// Hidden lists hidden inputs emitted in every form on the page (CSRF
	// token, record id).
	Hidden map[string]string
	// Message is an informational flash shown at the top of the page.
	Message string
	// Theme supplies design tokens and CSS variables for the layout.
	Theme *theme.RendererConfig
}

// FormErrorsKey collects errors that do not belong to a single field.
const FormErrorsKey = "__form__"

// FieldErrors returns the messages recorded for name.
func (o RenderOptions) FieldErrors(name string) []string {
	if len(o.Errors) == 0 {
		return nil
	}
	return o.Errors[name]
}

// FormErrors returns the messages not tied to any field.
func (o RenderOptions) FormErrors() []string {
	return o.FieldErrors(FormErrorsKey)
}
