package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	hourLabelLayout    = "03 PM Mon"
	hourDayLabelLayout = "03 PM Mon 02 Jan"

	maxDurationHours = 8
)

// Option is a value/label pair rendered as a <select> option.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionValues returns the option values in order.
func OptionValues(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		out = append(out, opt.Value)
	}
	return out
}

// ContainsValue reports whether value is one of the option values.
func ContainsValue(opts []Option, value string) bool {
	for _, opt := range opts {
		if opt.Value == value {
			return true
		}
	}
	return false
}

type timeOptions struct {
	start    []Option
	setup    []Option
	teardown []Option
	all      []Option
}

// StartTimeOpts lists every hour from EPOCH up to (not including) ESCHATON.
func (e *Event) StartTimeOpts() []Option { return cloneOptions(e.opts.start) }

// SetupTimeOpts lists the hours of the SetupShiftDays days before EPOCH.
func (e *Event) SetupTimeOpts() []Option { return cloneOptions(e.opts.setup) }

// TeardownTimeOpts lists the hours of the two days starting at ESCHATON.
func (e *Event) TeardownTimeOpts() []Option { return cloneOptions(e.opts.teardown) }

// AllTimeOpts spans the first setup hour through the last teardown hour and
// labels each hour with its date.
func (e *Event) AllTimeOpts() []Option { return cloneOptions(e.opts.all) }

// DurationOpts lists job durations of one to eight hours.
func (e *Event) DurationOpts() []Option {
	opts := make([]Option, 0, maxDurationHours)
	for i := 1; i <= maxDurationHours; i++ {
		label := fmt.Sprintf("%d hour", i)
		if i > 1 {
			label += "s"
		}
		opts = append(opts, Option{Value: strconv.Itoa(i), Label: label})
	}
	return opts
}

// WeightOpts lists the shift weight multipliers.
func (e *Event) WeightOpts() []Option {
	return []Option{
		{Value: "1.0", Label: "x1.0"},
		{Value: "1.5", Label: "x1.5"},
		{Value: "2.0", Label: "x2.0"},
		{Value: "2.5", Label: "x2.5"},
	}
}

// JobDefaults names the job fields remembered per department after a new
// job is saved, used to pre-fill the next new job form.
func (e *Event) JobDefaults() []string {
	return []string{"name", "description", "duration", "slots", "weight", "required_roles_ids", "extra15"}
}

func buildTimeOptions(epoch, eschaton time.Time, setupDays int) (timeOptions, error) {
	conLength := int(eschaton.Sub(epoch) / time.Hour)

	start, err := hourly(epoch, conLength, hourLabelLayout)
	if err != nil {
		return timeOptions{}, fmt.Errorf("start time options: %w", err)
	}

	setupStart := epoch.AddDate(0, 0, -setupDays)
	setup, err := hourly(setupStart, setupDays*24, hourLabelLayout)
	if err != nil {
		return timeOptions{}, fmt.Errorf("setup time options: %w", err)
	}

	teardown, err := hourly(eschaton, teardownDays*24, hourLabelLayout)
	if err != nil {
		return timeOptions{}, fmt.Errorf("teardown time options: %w", err)
	}

	lastTeardown := eschaton.Add(time.Duration(teardownDays*24-1) * time.Hour)
	total := int(lastTeardown.Sub(setupStart)/time.Hour) + 1
	all, err := hourly(setupStart, total, hourDayLabelLayout)
	if err != nil {
		return timeOptions{}, fmt.Errorf("all time options: %w", err)
	}

	return timeOptions{start: start, setup: setup, teardown: teardown, all: all}, nil
}

func hourly(from time.Time, count int, layout string) ([]Option, error) {
	if count <= 0 {
		return []Option{}, nil
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.HOURLY,
		Dtstart: from,
		Count:   count,
	})
	if err != nil {
		return nil, err
	}

	loc := from.Location()
	hours := rule.All()
	opts := make([]Option, 0, len(hours))
	for _, t := range hours {
		t = t.In(loc)
		opts = append(opts, Option{
			Value: t.Format(TimestampFormat),
			Label: t.Format(layout),
		})
	}
	return opts, nil
}

func cloneOptions(in []Option) []Option {
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
