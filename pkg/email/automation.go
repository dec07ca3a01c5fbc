package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
)

// AttendeeModel is the model name recorded with sent attendee emails.
const AttendeeModel = "Attendee"

// Store is the persistence the automation needs.
type Store interface {
	ListConsentCandidates(ctx context.Context, epoch time.Time) ([]model.Attendee, error)
	HasSent(ctx context.Context, ident, fkID string) (bool, error)
	RecordSent(ctx context.Context, sent model.SentEmail) error
}

// Result summarises an automation run.
type Result struct {
	Candidates int      `json:"candidates"`
	Sent       []string `json:"sent"`
	Skipped    []string `json:"skipped"`
	Failed     []string `json:"failed"`
	DryRun     bool     `json:"dry_run"`
}

// AutomationOption configures an Automation.
type AutomationOption func(*Automation)

// WithLogger sets the automation logger.
func WithLogger(logger *zap.Logger) AutomationOption {
	return func(a *Automation) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AutomationOption {
	return func(a *Automation) {
		if now != nil {
			a.now = now
		}
	}
}

// WithDryRun renders messages without sending or recording them.
func WithDryRun(dryRun bool) AutomationOption {
	return func(a *Automation) {
		a.dryRun = dryRun
	}
}

// Automation sends the age consent email once to every attendee who needs
// it, until the final email deadline.
type Automation struct {
	event  *config.Event
	email  *AgeConsent
	store  Store
	sender Sender
	logger *zap.Logger
	now    func() time.Time
	dryRun bool
}

// NewAutomation wires the renderer, store and sender.
func NewAutomation(event *config.Event, email *AgeConsent, store Store, sender Sender, options ...AutomationOption) (*Automation, error) {
	switch {
	case event == nil:
		return nil, errors.New("email automation: event config is required")
	case email == nil:
		return nil, errors.New("email automation: renderer is required")
	case store == nil:
		return nil, errors.New("email automation: store is required")
	}

	a := &Automation{
		event:  event,
		email:  email,
		store:  store,
		sender: sender,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	if a.sender == nil && !a.dryRun {
		return nil, errors.New("email automation: sender is required")
	}
	return a, nil
}

// Active reports whether the automation may still send.
func (a *Automation) Active() bool {
	return a.now().Before(a.event.FinalEmailDeadline())
}

// Pending lists attendees who would receive the email on the next run.
func (a *Automation) Pending(ctx context.Context) ([]model.Attendee, error) {
	if !a.Active() {
		return nil, nil
	}
	candidates, err := a.store.ListConsentCandidates(ctx, a.event.Epoch())
	if err != nil {
		return nil, fmt.Errorf("email automation: list candidates: %w", err)
	}

	pending := make([]model.Attendee, 0, len(candidates))
	for _, attendee := range candidates {
		if !a.eligible(attendee) {
			continue
		}
		sent, err := a.store.HasSent(ctx, AgeConsentIdent, attendee.ID)
		if err != nil {
			return nil, fmt.Errorf("email automation: check sent %s: %w", attendee.ID, err)
		}
		if !sent {
			pending = append(pending, attendee)
		}
	}
	return pending, nil
}

// Run sends the email to every pending attendee. Failures for one attendee
// do not stop the run; they are joined into the returned error.
func (a *Automation) Run(ctx context.Context) (Result, error) {
	result := Result{DryRun: a.dryRun}
	if !a.Active() {
		a.logger.Info("age consent automation inactive",
			zap.Time("deadline", a.event.FinalEmailDeadline()))
		return result, nil
	}

	candidates, err := a.store.ListConsentCandidates(ctx, a.event.Epoch())
	if err != nil {
		return result, fmt.Errorf("email automation: list candidates: %w", err)
	}
	result.Candidates = len(candidates)

	var errs []error
	for _, attendee := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !a.eligible(attendee) {
			result.Skipped = append(result.Skipped, attendee.ID)
			continue
		}
		sent, err := a.store.HasSent(ctx, AgeConsentIdent, attendee.ID)
		if err != nil {
			result.Failed = append(result.Failed, attendee.ID)
			errs = append(errs, fmt.Errorf("check sent %s: %w", attendee.ID, err))
			continue
		}
		if sent {
			result.Skipped = append(result.Skipped, attendee.ID)
			continue
		}

		if err := a.deliver(ctx, attendee); err != nil {
			result.Failed = append(result.Failed, attendee.ID)
			errs = append(errs, err)
			a.logger.Error("age consent email failed",
				zap.String("attendee_id", attendee.ID),
				zap.Error(err))
			continue
		}
		result.Sent = append(result.Sent, attendee.ID)
	}

	a.logger.Info("age consent automation finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("sent", len(result.Sent)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("dry_run", a.dryRun))

	if len(errs) > 0 {
		return result, fmt.Errorf("email automation: %w", errors.Join(errs...))
	}
	return result, nil
}

func (a *Automation) eligible(attendee model.Attendee) bool {
	return strings.TrimSpace(attendee.Email) != "" &&
		attendee.NeedsAgeConsent(a.event.Epoch())
}

func (a *Automation) deliver(ctx context.Context, attendee model.Attendee) error {
	msg, err := a.email.Render(ctx, attendee)
	if err != nil {
		return fmt.Errorf("render %s: %w", attendee.ID, err)
	}
	if a.dryRun {
		a.logger.Info("age consent email (dry run)",
			zap.String("attendee_id", attendee.ID),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	if err := a.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", attendee.ID, err)
	}
	record := model.SentEmail{
		Ident:   AgeConsentIdent,
		Model:   AttendeeModel,
		FKID:    attendee.ID,
		To:      msg.To,
		Subject: msg.Subject,
		SentAt:  a.now(),
	}
	if err := a.store.RecordSent(ctx, record); err != nil {
		return fmt.Errorf("record %s: %w", attendee.ID, err)
	}
	a.logger.Info("age consent email sent",
		zap.String("attendee_id", attendee.ID),
		zap.String("to", msg.To))
	return nil
}
