package email

import (
	"context"
	"fmt"

	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

// PreviewName is the registry name of the age consent preview renderer.
const PreviewName = "age_consent"

// Preview exposes the age consent HTML body as a render.Renderer so admins
// can inspect it in the browser.
type Preview struct {
	email *AgeConsent
}

// NewPreview wraps an AgeConsent renderer.
func NewPreview(email *AgeConsent) *Preview {
	return &Preview{email: email}
}

func (p *Preview) Name() string {
	return PreviewName
}

func (p *Preview) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render accepts a model.Attendee or *model.Attendee.
func (p *Preview) Render(ctx context.Context, view any, _ render.RenderOptions) ([]byte, error) {
	var attendee model.Attendee
	switch v := view.(type) {
	case model.Attendee:
		attendee = v
	case *model.Attendee:
		if v == nil {
			return nil, fmt.Errorf("%w: nil attendee", render.ErrUnsupportedView)
		}
		attendee = *v
	default:
		return nil, fmt.Errorf("%w: %T", render.ErrUnsupportedView, view)
	}

	msg, err := p.email.Render(ctx, attendee)
	if err != nil {
		return nil, err
	}
	return []byte(msg.HTML), nil
}
