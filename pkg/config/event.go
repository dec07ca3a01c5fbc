package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date names every deployment is expected to configure.
const (
	DateEpoch        = "EPOCH"
	DateEschaton     = "ESCHATON"
	DateUberTakedown = "UBER_TAKEDOWN"
)

// teardownDays is how many full days after ESCHATON teardown shifts may start.
const teardownDays = 2

// Event holds the per-event constants templates refer to through the `c`
// namespace. Call Validate (or Parse) before using the accessor methods; it
// resolves the timezone, the [dates] section and the derived option lists.
type Event struct {
	Name                  string            `yaml:"name" validate:"required"`
	Year                  string            `yaml:"year"`
	Timezone              string            `yaml:"timezone"`
	SetupShiftDays        int               `yaml:"setupShiftDays" validate:"gte=0,lte=14"`
	URLBase               string            `yaml:"urlBase" validate:"required,url"`
	ConsentFormURL        string            `yaml:"consentFormURL" validate:"required,url"`
	RegdeskEmailSignature string            `yaml:"regdeskEmailSignature"`
	RegdeskEmail          string            `yaml:"regdeskEmail" validate:"omitempty,email"`
	Dates                 map[string]string `yaml:"dates" validate:"required"`

	loc   *time.Location
	dates map[string]time.Time
	opts  timeOptions
}

// Location returns the event timezone, UTC when unresolved.
func (e *Event) Location() *time.Location {
	if e == nil || e.loc == nil {
		return time.UTC
	}
	return e.loc
}

// Epoch is the moment the event opens.
func (e *Event) Epoch() time.Time {
	t, _ := e.Date(DateEpoch)
	return t
}

// Eschaton is the moment the event closes.
func (e *Event) Eschaton() time.Time {
	t, _ := e.Date(DateEschaton)
	return t
}

// Date returns a configured date by name (case-insensitive). The second
// result is false for unknown or empty dates.
func (e *Event) Date(name string) (time.Time, bool) {
	if e == nil {
		return time.Time{}, false
	}
	t, ok := e.dates[strings.ToUpper(strings.TrimSpace(name))]
	return t, ok
}

// Before reports whether now is before the named date. Unset dates are never
// before anything, matching the BEFORE_* config lookups.
func (e *Event) Before(name string, now time.Time) bool {
	t, ok := e.Date(name)
	if !ok {
		return false
	}
	return now.Before(t)
}

// After reports whether now is after the named date.
func (e *Event) After(name string, now time.Time) bool {
	t, ok := e.Date(name)
	if !ok {
		return false
	}
	return now.After(t)
}

// FinalEmailDeadline is the earlier of UBER_TAKEDOWN and EPOCH. Automated
// emails stop going out after it.
func (e *Event) FinalEmailDeadline() time.Time {
	epoch := e.Epoch()
	takedown, ok := e.Date(DateUberTakedown)
	if !ok || epoch.Before(takedown) {
		return epoch
	}
	return takedown
}

// EventNameAndYear appends the configured year to the event name.
func (e *Event) EventNameAndYear() string {
	if strings.TrimSpace(e.Year) == "" {
		return e.Name
	}
	return e.Name + " " + strings.TrimSpace(e.Year)
}

// EventDates renders the event span for humans: "May 1", "May 1-3" or
// "April 30 - May 2".
func (e *Event) EventDates() string {
	start := e.Epoch().In(e.Location())
	end := e.Eschaton().In(e.Location())

	switch {
	case start.Year() == end.Year() && start.YearDay() == end.YearDay():
		return start.Format("January 2")
	case start.Month() != end.Month() || start.Year() != end.Year():
		return start.Format("January 2") + " - " + end.Format("January 2")
	default:
		return start.Format("January 2") + "-" + end.Format("2")
	}
}

func (e *Event) resolve() error {
	loc, err := time.LoadLocation(strings.TrimSpace(e.Timezone))
	if err != nil {
		return fmt.Errorf("timezone %q: %w", e.Timezone, err)
	}
	e.loc = loc

	dates := make(map[string]time.Time, len(e.Dates))
	for name, raw := range e.Dates {
		key := strings.ToUpper(strings.TrimSpace(name))
		t, ok, err := ParseDate(raw, loc)
		if err != nil {
			return fmt.Errorf("dates.%s: %w", name, err)
		}
		if ok {
			dates[key] = t
		}
	}
	e.dates = dates

	epoch, ok := dates[DateEpoch]
	if !ok {
		return errors.New("dates.epoch is required")
	}
	eschaton, ok := dates[DateEschaton]
	if !ok {
		return errors.New("dates.eschaton is required")
	}
	if !eschaton.After(epoch) {
		return fmt.Errorf("eschaton %s must be after epoch %s", eschaton.Format(TimestampFormat), epoch.Format(TimestampFormat))
	}

	opts, err := buildTimeOptions(epoch, eschaton, e.SetupShiftDays)
	if err != nil {
		return err
	}
	e.opts = opts
	return nil
}

// ParseDate parses a [dates] entry in the event timezone. "YYYY-MM-DD HH"
// resolves to that hour; a bare "YYYY-MM-DD" resolves to 23:59 that day; an
// empty value means the date is unset and ok is false.
func ParseDate(raw string, loc *time.Location) (t time.Time, ok bool, err error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if strings.Contains(value, " ") {
		t, err = time.ParseInLocation("2006-01-02 15", value, loc)
	} else {
		t, err = time.ParseInLocation("2006-01-02 15:04", value+" 23:59", loc)
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
