package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
	rendertemplate "github.com/goliatone/go-staffdesk/pkg/render/template"
	"github.com/goliatone/go-staffdesk/pkg/render/template/gotemplate"
)

// AgeConsentIdent identifies the age consent email in the sent-email log.
const AgeConsentIdent = "age_consent"

// AgeCorrectionPath is where attendees fix a wrong birth date.
const AgeCorrectionPath = "/preregistration/confirm"

const (
	ageConsentHTML    = "age_consent.html"
	ageConsentSubject = "age_consent_subject.txt"
)

// ErrMissingField is returned when an attendee or the event lacks a value
// the email needs.
var ErrMissingField = errors.New("email: missing required value")

// LinkBuilder returns the self-service URL where the attendee can correct
// their registration. The URL must identify the attendee.
type LinkBuilder func(attendee model.Attendee) string

// DateFormatter renders a deadline for humans.
type DateFormatter func(t time.Time) string

// ConfirmLinks builds links of the form <base>/preregistration/confirm?id=<id>.
func ConfirmLinks(base string) LinkBuilder {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return func(attendee model.Attendee) string {
		return base + AgeCorrectionPath + "?" + url.Values{"id": {attendee.ID}}.Encode()
	}
}

// LocalDates formats times in loc, e.g. "Wednesday, April 15 at 11:59 PM EDT".
func LocalDates(loc *time.Location) DateFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return func(t time.Time) string {
		return t.In(loc).Format("Monday, January 2 at 3:04 PM MST")
	}
}

// Option configures an AgeConsent renderer.
type Option func(*AgeConsent)

// WithLinkBuilder overrides how the correction link is built.
func WithLinkBuilder(links LinkBuilder) Option {
	return func(a *AgeConsent) {
		if links != nil {
			a.links = links
		}
	}
}

// WithDateFormatter overrides how the deadline is formatted.
func WithDateFormatter(dates DateFormatter) Option {
	return func(a *AgeConsent) {
		if dates != nil {
			a.dates = dates
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(a *AgeConsent) {
		if renderer != nil {
			a.templates = renderer
		}
	}
}

// WithTemplatesDir loads override templates from dir before the embedded
// ones.
func WithTemplatesDir(dir string) Option {
	return func(a *AgeConsent) {
		a.templatesDir = strings.TrimSpace(dir)
	}
}

// AgeConsent renders the age consent email.
type AgeConsent struct {
	event        *config.Event
	templates    rendertemplate.TemplateRenderer
	templatesDir string
	links        LinkBuilder
	dates        DateFormatter
}

// NewAgeConsent builds the renderer for event. Links default to
// ConfirmLinks(event.URLBase) and dates to the event timezone.
func NewAgeConsent(event *config.Event, options ...Option) (*AgeConsent, error) {
	if event == nil {
		return nil, errors.New("email: event config is required")
	}
	a := &AgeConsent{
		event: event,
		links: ConfirmLinks(event.URLBase),
		dates: LocalDates(event.Location()),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	if a.templates == nil {
		engineOpts := []gotemplate.Option{
			gotemplate.WithName("email"),
			gotemplate.WithFS(TemplatesFS()),
		}
		if a.templatesDir != "" {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(a.templatesDir))
		}
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("email: configure template renderer: %w", err)
		}
		a.templates = engine
	}
	return a, nil
}

// Templates returns the underlying template engine.
func (a *AgeConsent) Templates() rendertemplate.TemplateRenderer {
	return a.templates
}

// Render builds the email for attendee.
func (a *AgeConsent) Render(_ context.Context, attendee model.Attendee) (Message, error) {
	data, err := a.data(attendee)
	if err != nil {
		return Message{}, err
	}

	subject, err := a.templates.RenderTemplate(ageConsentSubject, data)
	if err != nil {
		return Message{}, fmt.Errorf("email: age consent subject: %w", err)
	}
	body, err := a.templates.RenderTemplate(ageConsentHTML, data)
	if err != nil {
		return Message{}, fmt.Errorf("email: age consent body: %w", err)
	}

	return Message{
		To:      attendee.Email,
		Subject: html.UnescapeString(strings.Join(strings.Fields(subject), " ")),
		HTML:    body,
		Text:    PlainText(body),
	}, nil
}

type ageConsentData struct {
	Attendee         attendeeData `json:"attendee"`
	C                constants    `json:"c"`
	AgeCorrectionURL string       `json:"age_correction_url"`
}

type attendeeData struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
}

// constants mirrors the names templates use for event settings.
type constants struct {
	EventName             string `json:"EVENT_NAME"`
	EventNameAndYear      string `json:"EVENT_NAME_AND_YEAR"`
	EventDates            string `json:"EVENT_DATES"`
	ConsentFormURL        string `json:"CONSENT_FORM_URL"`
	URLBase               string `json:"URL_BASE"`
	UberTakedown          string `json:"UBER_TAKEDOWN"`
	RegdeskEmailSignature string `json:"REGDESK_EMAIL_SIGNATURE"`
	RegdeskEmail          string `json:"REGDESK_EMAIL"`
}

func (a *AgeConsent) data(attendee model.Attendee) (ageConsentData, error) {
	var missing []string
	if strings.TrimSpace(attendee.ID) == "" {
		missing = append(missing, "attendee.id")
	}
	if strings.TrimSpace(attendee.FirstName) == "" {
		missing = append(missing, "attendee.first_name")
	}
	takedown, ok := a.event.Date(config.DateUberTakedown)
	if !ok {
		missing = append(missing, "c."+config.DateUberTakedown)
	}
	if len(missing) > 0 {
		return ageConsentData{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return ageConsentData{
		Attendee: attendeeData{ID: attendee.ID, FirstName: attendee.FirstName},
		C: constants{
			EventName:             a.event.Name,
			EventNameAndYear:      a.event.EventNameAndYear(),
			EventDates:            a.event.EventDates(),
			ConsentFormURL:        a.event.ConsentFormURL,
			URLBase:               a.event.URLBase,
			UberTakedown:          a.dates(takedown),
			RegdeskEmailSignature: a.event.RegdeskEmailSignature,
			RegdeskEmail:          a.event.RegdeskEmail,
		},
		AgeCorrectionURL: a.links(attendee),
	}, nil
}

// TemplatesFS exposes the embedded email templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
