package jobform_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
	"github.com/goliatone/go-staffdesk/pkg/testsupport"
)

func validValues() url.Values {
	return url.Values{
		"csrf_token":         {"tok"},
		"id":                 {""},
		"type":               {"setup"},
		"name":               {"  Cabinet Unload "},
		"description":        {"Move cabinets"},
		"start_time":         {"2026-04-30 10:00:00"},
		"duration":           {"3"},
		"extra15":            {"1"},
		"slots":              {"4"},
		"weight":             {"1.5"},
		"department_id":      {testsupport.DeptArcade},
		"required_roles_ids": {"role-tech", "role-lead", "role-tech"},
	}
}

func TestParseSubmission_NewJob(t *testing.T) {
	event := testsupport.Event(t)

	job, err := jobform.ParseSubmission(validValues(), event, testsupport.DeptRoles(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := model.Job{
		Type:            model.JobTypeSetup,
		Name:            "Cabinet Unload",
		Description:     "Move cabinets",
		StartTime:       time.Date(2026, 4, 30, 10, 0, 0, 0, event.Location()),
		Duration:        3,
		Extra15:         true,
		Slots:           4,
		Weight:          1.5,
		DepartmentID:    testsupport.DeptArcade,
		RequiredRoleIDs: []string{"role-tech", "role-lead"},
		IsNew:           true,
	}
	if diff := cmp.Diff(want, job, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Fatalf("job mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSubmission_ExistingJobKeepsIdentity(t *testing.T) {
	event := testsupport.Event(t)
	existing := testsupport.ExistingJob(t)

	values := validValues()
	values.Set("id", existing.ID)
	values.Del("extra15")

	job, err := jobform.ParseSubmission(values, event, testsupport.DeptRoles(), &existing)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if job.ID != existing.ID || job.IsNew || len(job.Shifts) != 2 {
		t.Fatalf("existing identity lost: %+v", job)
	}
	if job.Extra15 {
		t.Fatalf("unchecked extra15 must parse as false")
	}
}

func TestParseSubmission_ValidationErrors(t *testing.T) {
	event := testsupport.Event(t)
	existing := testsupport.ExistingJob(t)

	values := validValues()
	values.Set("name", "   ")
	values.Set("duration", "9")
	values.Set("slots", "1")
	values.Set("weight", "3.0")
	values.Set("start_time", "2026-05-02 10:00:00")
	values["required_roles_ids"] = []string{"role-radio"}

	job, err := jobform.ParseSubmission(values, event, testsupport.DeptRoles(), &existing)
	var verr *jobform.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := map[string][]string{
		"name":               {"Name is required"},
		"duration":           {"Duration must be at most 8"},
		"slots":              {"Slots must be at least 2"},
		"weight":             {"Weight must be one of the listed multipliers"},
		"start_time":         {"Start Time is not available for setup jobs"},
		"required_roles_ids": {"Role role-radio does not belong to this department"},
	}
	if diff := cmp.Diff(want, verr.Fields); diff != "" {
		t.Fatalf("validation errors mismatch (-want +got):\n%s", diff)
	}
	if job.ID != existing.ID {
		t.Fatalf("rejected job should still carry its identity")
	}
	if got := verr.Options()["name"]; len(got) != 1 {
		t.Fatalf("expected render options to carry field errors, got %v", verr.Options())
	}
}

func TestParseSubmission_WeightMustMatchAnOption(t *testing.T) {
	event := testsupport.Event(t)

	cases := []struct {
		raw    string
		want   float64
		reject bool
	}{
		{raw: "1.5", want: 1.5},
		{raw: "1.50", want: 1.5},
		{raw: "2", want: 2.0},
		{raw: "1.46", reject: true},
		{raw: "1.54", reject: true},
		{raw: "2.45", reject: true},
		{raw: "3.0", reject: true},
	}

	for _, tc := range cases {
		values := validValues()
		values.Set("weight", tc.raw)

		job, err := jobform.ParseSubmission(values, event, testsupport.DeptRoles(), nil)
		if tc.reject {
			var verr *jobform.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("weight %s: expected *ValidationError, got %v (stored %v)", tc.raw, err, job.Weight)
			}
			if diff := cmp.Diff([]string{"Weight must be one of the listed multipliers"}, verr.Fields["weight"]); diff != "" {
				t.Fatalf("weight %s: errors mismatch (-want +got):\n%s", tc.raw, diff)
			}
			continue
		}
		if err != nil {
			t.Fatalf("weight %s: %v", tc.raw, err)
		}
		if job.Weight != tc.want {
			t.Fatalf("weight %s: stored %v, want %v", tc.raw, job.Weight, tc.want)
		}
	}
}

func TestParseSubmission_MalformedInput(t *testing.T) {
	event := testsupport.Event(t)

	values := url.Values{
		"type":          {"party"},
		"name":          {"x"},
		"start_time":    {"tomorrow"},
		"duration":      {"two"},
		"slots":         {""},
		"weight":        {"1.0"},
		"department_id": {"dept-unknown"},
	}
	_, err := jobform.ParseSubmission(values, event, testsupport.DeptRoles(), nil)
	var verr *jobform.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := map[string][]string{
		"type":          {"Type must be one of: setup, teardown, regular, other"},
		"start_time":    {"Start Time is not a valid time"},
		"duration":      {"Duration must be a whole number"},
		"slots":         {"Slots is required"},
		"department_id": {"Department does not exist"},
	}
	if diff := cmp.Diff(want, verr.Fields); diff != "" {
		t.Fatalf("validation errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_EchoesSubmission(t *testing.T) {
	values := validValues()
	values.Del("extra15")
	values.Set("from_schedule", "1")

	got := jobform.Values(values)
	if _, ok := got[render.CSRFFieldName]; ok {
		t.Fatalf("csrf token must not be echoed")
	}
	if _, ok := got["from_schedule"]; ok {
		t.Fatalf("from_schedule must not be echoed")
	}
	if got["extra15"] != "false" {
		t.Fatalf("missing checkbox should echo as false, got %v", got["extra15"])
	}
	if diff := cmp.Diff([]string{"role-tech", "role-lead"}, got["required_roles_ids"]); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_CaptureAndApply(t *testing.T) {
	event := testsupport.Event(t)
	saved := testsupport.ExistingJob(t)
	saved.Extra15 = true

	defaults := jobform.DefaultsFromJob(saved, event.JobDefaults())
	want := map[string]string{
		"name":               "Cabinet Unload",
		"description":        "Move cabinets from the truck to the hall.",
		"duration":           "3",
		"slots":              "4",
		"weight":             "1.5",
		"required_roles_ids": "role-tech",
		"extra15":            "true",
	}
	if diff := cmp.Diff(want, defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	next := jobform.ApplyDefaults(model.NewJob(testsupport.DeptArcade), defaults)
	if next.Name != saved.Name || next.Duration != 3 || next.Slots != 4 || next.Weight != 1.5 || !next.Extra15 {
		t.Fatalf("defaults not applied: %+v", next)
	}
	if !next.IsNew || next.ID != "" || len(next.Shifts) != 0 {
		t.Fatalf("defaults must not copy identity or shifts")
	}

	stale := jobform.ApplyDefaults(model.NewJob(""), map[string]string{"duration": "zero", "weight": "-1"})
	if stale.Duration != 1 || stale.Weight != 1.0 {
		t.Fatalf("unparseable defaults must be skipped: %+v", stale)
	}
}
