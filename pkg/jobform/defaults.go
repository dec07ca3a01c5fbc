package jobform

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// DefaultsFromJob captures the fields named by keys (the event's job
// defaults) from a freshly saved job, so the next new job in the same
// department starts from them. List values are comma separated.
func DefaultsFromJob(job model.Job, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		switch key {
		case "name":
			out[key] = job.Name
		case "description":
			out[key] = job.Description
		case "type":
			out[key] = string(job.Type)
		case "duration":
			out[key] = strconv.Itoa(job.Duration)
		case "slots":
			out[key] = strconv.Itoa(job.Slots)
		case "weight":
			out[key] = FormatWeight(job.Weight)
		case "extra15":
			out[key] = strconv.FormatBool(job.Extra15)
		case "required_roles_ids":
			out[key] = strings.Join(job.RequiredRoleIDs, ",")
		}
	}
	return out
}

// ApplyDefaults fills job from defaults. Values that do not parse are
// skipped so a stale default never breaks the form.
func ApplyDefaults(job model.Job, defaults map[string]string) model.Job {
	for key, value := range defaults {
		switch key {
		case "name":
			job.Name = value
		case "description":
			job.Description = value
		case "type":
			if t := model.JobType(value); t.Valid() {
				job.Type = t
			}
		case "duration":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				job.Duration = n
			}
		case "slots":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				job.Slots = n
			}
		case "weight":
			if w, err := strconv.ParseFloat(value, 64); err == nil && w > 0 {
				job.Weight = w
			}
		case "extra15":
			job.Extra15 = checkboxValue(value)
		case "required_roles_ids":
			job.RequiredRoleIDs = splitList(value)
		}
	}
	return job
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func checkboxValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
