package jobform

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

// FieldLabels are the human names used in validation messages.
var FieldLabels = map[string]string{
	"type":               "Type",
	"name":               "Name",
	"description":        "Description",
	"start_time":         "Start Time",
	"duration":           "Duration",
	"slots":              "Slots",
	"weight":             "Weight",
	"department_id":      "Department",
	"required_roles_ids": "Required Roles",
}

// ValidationError lists what is wrong with a submission, keyed by form field.
type ValidationError struct {
	Fields map[string][]string
	Form   []string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+len(e.Form))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	parts = append(parts, e.Form...)
	return "jobform: invalid submission: " + strings.Join(parts, "; ")
}

// Options returns the errors in RenderOptions.Errors form.
func (e *ValidationError) Options() map[string][]string {
	return render.ErrorMapping{Fields: e.Fields, Form: e.Form}.Options()
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

type submission struct {
	Type         string `form:"type" validate:"required,oneof=setup teardown regular other"`
	Name         string `form:"name" validate:"required,max=255"`
	Description  string `form:"description"`
	StartTime    string `form:"start_time" validate:"required"`
	DepartmentID string `form:"department_id" validate:"required"`
	Weight       string `form:"weight" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// ParseSubmission turns a posted job form into a job. existing is the stored
// job being edited, nil for a new one. On failure the returned job still
// carries what was submitted, together with a *ValidationError.
func ParseSubmission(values url.Values, event *config.Event, deptRoles model.DeptRoles, existing *model.Job) (model.Job, error) {
	job := model.NewJob("")
	if existing != nil {
		job = *existing
		job.IsNew = false
	}

	form := submission{
		Type:         strings.TrimSpace(values.Get("type")),
		Name:         strings.TrimSpace(values.Get("name")),
		Description:  strings.TrimSpace(values.Get("description")),
		StartTime:    strings.TrimSpace(values.Get("start_time")),
		DepartmentID: strings.TrimSpace(values.Get("department_id")),
		Weight:       strings.TrimSpace(values.Get("weight")),
	}

	verr := &ValidationError{}
	if err := validate.Struct(form); err != nil {
		mapped := render.MapValidationErrors(err, FieldLabels)
		verr.Fields = mapped.Fields
		verr.Form = mapped.Form
	}

	job.Type = model.JobType(form.Type)
	job.Name = form.Name
	job.Description = form.Description
	job.DepartmentID = form.DepartmentID
	job.Extra15 = checkboxValue(values.Get("extra15"))
	job.RequiredRoleIDs = uniqueValues(values["required_roles_ids"])

	if n, ok := parseCount(verr, values.Get("duration"), "duration", 1, len(event.DurationOpts())); ok {
		job.Duration = n
	}
	if n, ok := parseCount(verr, values.Get("slots"), "slots", max(1, job.FilledSlots()), 0); ok {
		job.Slots = n
	}

	if form.Weight != "" {
		if w, ok := parseWeight(event, form.Weight); !ok {
			verr.add("weight", "Weight must be one of the listed multipliers")
		} else {
			job.Weight = w
		}
	}

	if form.StartTime != "" {
		start, err := time.ParseInLocation(config.TimestampFormat, form.StartTime, event.Location())
		if err != nil {
			verr.add("start_time", "Start Time is not a valid time")
		} else {
			job.StartTime = start
			if job.Type.Valid() {
				opts, _, err := StartTimeOptions(event, job.Type)
				if err != nil {
					return job, err
				}
				if !config.ContainsValue(opts, form.StartTime) {
					verr.add("start_time", fmt.Sprintf("Start Time is not available for %s jobs", strings.ToLower(job.Type.Label())))
				}
			}
		}
	}

	if form.DepartmentID != "" {
		if _, ok := deptRoles[form.DepartmentID]; !ok {
			verr.add("department_id", "Department does not exist")
		} else {
			for _, roleID := range job.RequiredRoleIDs {
				if !deptRoles.Contains(form.DepartmentID, roleID) {
					verr.add("required_roles_ids", fmt.Sprintf("Role %s does not belong to this department", roleID))
				}
			}
		}
	}

	if len(verr.Fields) > 0 || len(verr.Form) > 0 {
		return job, verr
	}
	return job, nil
}

// parseWeight accepts raw only when it is numerically equal to one of the
// weight options, so "1.50" matches "1.5" but "1.46" matches nothing.
func parseWeight(event *config.Event, raw string) (float64, bool) {
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	for _, opt := range event.WeightOpts() {
		allowed, err := strconv.ParseFloat(opt.Value, 64)
		if err == nil && allowed == w {
			return w, true
		}
	}
	return 0, false
}

// Values echoes a submission back into RenderOptions.Values so a rejected
// form keeps what the user typed.
func Values(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, v := range values {
		switch key {
		case render.CSRFFieldName, render.IDFieldName, FromScheduleField:
			continue
		case "required_roles_ids":
			out[key] = uniqueValues(v)
		default:
			if len(v) > 0 {
				out[key] = v[0]
			}
		}
	}
	if _, ok := out["extra15"]; !ok {
		out["extra15"] = "false"
	}
	if _, ok := out["required_roles_ids"]; !ok {
		out["required_roles_ids"] = []string{}
	}
	return out
}

func parseCount(verr *ValidationError, raw, field string, minimum, maximum int) (int, bool) {
	label := FieldLabels[field]
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.add(field, label+" is required")
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(field, label+" must be a whole number")
		return 0, false
	}
	if n < minimum {
		verr.add(field, fmt.Sprintf("%s must be at least %d", label, minimum))
		return n, false
	}
	if maximum > 0 && n > maximum {
		verr.add(field, fmt.Sprintf("%s must be at most %d", label, maximum))
		return n, false
	}
	return n, true
}

func uniqueValues(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
