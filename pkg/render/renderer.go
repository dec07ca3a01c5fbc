// Package render defines the contract shared by the admin page and email
// renderers, plus helpers for the per-request data they consume.
package render

import (
	"context"
)

// Renderer turns a view value into bytes (HTML pages, email previews).
// Implementations document which concrete view type they accept and return
// ErrUnsupportedView for anything else.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view any, options RenderOptions) ([]byte, error)
}
