// Package staffdesk renders the job admin form and the parental consent
// email of an event staffing app. The root package re-exports the common
// entry points; pkg/jobform and pkg/email hold the renderers.
package staffdesk

import (
	"context"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// JobFormInput aliases jobform.Input.
type JobFormInput = jobform.Input

// Message is a rendered email.
type Message = email.Message

// LoadConfig reads the configuration at path, see config.Load.
func LoadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}

// GenerateJobFormHTML builds a job form renderer for event and renders input
// with it. Callers rendering more than once should keep a jobform.Renderer.
func GenerateJobFormHTML(ctx context.Context, event *config.Event, input JobFormInput, opts RenderOptions, options ...jobform.Option) ([]byte, error) {
	renderer, err := jobform.New(event, options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, input, opts)
}

// RenderAgeConsent renders the parental consent email for attendee.
func RenderAgeConsent(ctx context.Context, event *config.Event, attendee model.Attendee, options ...email.Option) (Message, error) {
	ageConsent, err := email.NewAgeConsent(event, options...)
	if err != nil {
		return Message{}, err
	}
	return ageConsent.Render(ctx, attendee)
}
