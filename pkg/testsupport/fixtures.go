// Package testsupport holds fixtures and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
)

// EventYAML is a complete configuration used across package tests. The
// event runs 2026-05-01 08:00 to 2026-05-03 18:00 America/New_York with one
// setup day.
const EventYAML = `
event:
  name: MAGFest
  year: "2026"
  timezone: America/New_York
  setupShiftDays: 1
  urlBase: https://reg.example.org/uber
  consentFormURL: https://example.org/consent.pdf
  regdeskEmailSignature: "- The MAGFest Registration Team"
  regdeskEmail: regdesk@example.org
  dates:
    epoch: 2026-05-01 08
    eschaton: 2026-05-03 18
    uber_takedown: "2026-04-15"
database:
  url: postgres://localhost/staffdesk_test
`

// Config parses EventYAML, failing the test on error.
func Config(t testing.TB) *config.Config {
	t.Helper()

	cfg, err := config.Parse([]byte(EventYAML))
	if err != nil {
		t.Fatalf("parse fixture config: %v", err)
	}
	return cfg
}

// Event returns the event section of the fixture config.
func Event(t testing.TB) *config.Event {
	t.Helper()
	return &Config(t).Event
}

// Department ids used by the fixtures.
const (
	DeptArcade  = "dept-arcade"
	DeptStops   = "dept-stops"
	DeptTechOps = "dept-techops"
)

// Departments returns fixture departments, sorted by name.
func Departments() []model.Department {
	return []model.Department{
		{ID: DeptArcade, Name: "Arcade"},
		{ID: DeptStops, Name: "Staff Ops"},
		{ID: DeptTechOps, Name: "TechOps"},
	}
}

// DeptRoles returns role options for the fixture departments. Staff Ops has
// no roles.
func DeptRoles() model.DeptRoles {
	return model.BuildDeptRoles(Departments(), []model.Role{
		{ID: "role-tech", DepartmentID: DeptArcade, Name: "Technician"},
		{ID: "role-lead", DepartmentID: DeptArcade, Name: "Lead"},
		{ID: "role-radio", DepartmentID: DeptTechOps, Name: "Radio"},
	})
}

// ExistingJob returns a saved setup job in the arcade with two filled shifts.
func ExistingJob(t testing.TB) model.Job {
	t.Helper()

	loc := Event(t).Location()
	return model.Job{
		ID:              "job-1",
		Type:            model.JobTypeSetup,
		Name:            "Cabinet Unload",
		Description:     "Move cabinets from the truck to the hall.",
		StartTime:       time.Date(2026, 4, 30, 10, 0, 0, 0, loc),
		Duration:        3,
		Slots:           4,
		Weight:          1.5,
		DepartmentID:    DeptArcade,
		RequiredRoleIDs: []string{"role-tech"},
		Shifts: []model.Shift{
			{ID: "shift-1", JobID: "job-1", AttendeeID: "att-1"},
			{ID: "shift-2", JobID: "job-1", AttendeeID: "att-2"},
		},
	}
}

// MinorAttendee returns an attendee who is 16 when the fixture event starts.
func MinorAttendee() model.Attendee {
	return model.Attendee{
		ID:        "5f0c6a2e-1b7d-4c8e-9a51-0d6b7a3f2c10",
		FirstName: "Robin",
		LastName:  "Park",
		Email:     "robin@example.org",
		BirthDate: time.Date(2010, 2, 14, 0, 0, 0, 0, time.UTC),
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t testing.TB, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs a render function that also writes to an
// io.Writer and returns both the returned string and the written bytes.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
