package jobform

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/visibility"
	"github.com/goliatone/go-staffdesk/pkg/visibility/expr"
)

// Names of the start time option sets.
const (
	StartTimesSetup    = "setup"
	StartTimesTeardown = "teardown"
	StartTimesRegular  = "regular"
	StartTimesAll      = "all"
)

type startTimeSet struct {
	name    string
	rule    string
	options func(*config.Event) []config.Option
}

// startTimeSets is checked in order; the first rule that holds wins and the
// last entry always holds.
var startTimeSets = []startTimeSet{
	{StartTimesSetup, fmt.Sprintf("type == %q", model.JobTypeSetup), (*config.Event).SetupTimeOpts},
	{StartTimesTeardown, fmt.Sprintf("type == %q", model.JobTypeTeardown), (*config.Event).TeardownTimeOpts},
	{StartTimesRegular, fmt.Sprintf("type == %q", model.JobTypeRegular), (*config.Event).StartTimeOpts},
	{StartTimesAll, "", (*config.Event).AllTimeOpts},
}

var defaultEvaluator visibility.Evaluator = expr.New()

// StartTimeOptions returns the start times offered for a job of the given
// type, and the name of the set they came from.
func StartTimeOptions(event *config.Event, jobType model.JobType) ([]config.Option, string, error) {
	return startTimeOptions(defaultEvaluator, event, jobType)
}

func startTimeOptions(eval visibility.Evaluator, event *config.Event, jobType model.JobType) ([]config.Option, string, error) {
	ctx := visibility.Context{Values: map[string]any{"type": string(jobType)}}
	for _, set := range startTimeSets {
		if set.rule == "" {
			return set.options(event), set.name, nil
		}
		ok, err := eval.Eval(set.rule, ctx)
		if err != nil {
			return nil, "", fmt.Errorf("jobform: start time set %s: %w", set.name, err)
		}
		if ok {
			return set.options(event), set.name, nil
		}
	}
	return event.AllTimeOpts(), StartTimesAll, nil
}

// DurationLabel is the caption of the duration field. Only regular jobs
// have a fixed duration; for the rest it is an estimate.
func DurationLabel(jobType model.JobType) string {
	if jobType == model.JobTypeRegular {
		return "Duration"
	}
	return "Expected Approximate Duration"
}

// ResetDefaults are the values the form's reset button restores. Checkboxes
// (extra15 and the required roles) are cleared as well.
func ResetDefaults() map[string]string {
	return map[string]string{
		"name":        "",
		"description": "",
		"duration":    "1",
		"slots":       "1",
		"weight":      "1.0",
	}
}

// FormatWeight renders a weight the way the weight options spell it.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 1, 64)
}
