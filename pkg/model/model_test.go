package model_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

func TestNewJob_Defaults(t *testing.T) {
	job := model.NewJob("dept-1")

	want := model.Job{
		Type:         model.JobTypeRegular,
		Duration:     1,
		Slots:        1,
		Weight:       1.0,
		DepartmentID: "dept-1",
		IsNew:        true,
	}
	if diff := cmp.Diff(want, job); diff != "" {
		t.Fatalf("new job mismatch (-want +got):\n%s", diff)
	}
}

func TestJob_EndTime(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	job := model.Job{StartTime: start, Duration: 2}
	if got := job.EndTime(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("end time: got %s", got)
	}

	job.Extra15 = true
	if got := job.EndTime(); !got.Equal(start.Add(2*time.Hour + 15*time.Minute)) {
		t.Fatalf("end time with extra15: got %s", got)
	}
}

func TestJob_FilledSlotsAndRoles(t *testing.T) {
	job := model.Job{
		RequiredRoleIDs: []string{"r1", "r2"},
		Shifts:          []model.Shift{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
	}
	if job.FilledSlots() != 3 {
		t.Fatalf("expected 3 filled slots, got %d", job.FilledSlots())
	}
	if !job.HasRole("r2") || job.HasRole("r3") {
		t.Fatalf("unexpected role membership for %v", job.RequiredRoleIDs)
	}
}

func TestJobType_Valid(t *testing.T) {
	for _, typ := range model.JobTypes() {
		if !typ.Valid() {
			t.Fatalf("expected %q to be valid", typ)
		}
	}
	if model.JobType("cleanup").Valid() {
		t.Fatalf("expected unknown job type to be invalid")
	}
}

func TestBuildDeptRoles(t *testing.T) {
	departments := []model.Department{{ID: "arcade"}, {ID: "tech"}, {ID: "empty"}}
	roles := []model.Role{
		{ID: "r3", DepartmentID: "tech", Name: "Sound"},
		{ID: "r1", DepartmentID: "arcade", Name: "Lead"},
		{ID: "r2", DepartmentID: "tech", Name: "Lighting"},
	}

	got := model.BuildDeptRoles(departments, roles)
	want := model.DeptRoles{
		"arcade": {{Value: "r1", Label: "Lead"}},
		"tech":   {{Value: "r2", Label: "Lighting"}, {Value: "r3", Label: "Sound"}},
		"empty":  {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dept roles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"arcade", "empty", "tech"}, got.Departments()); diff != "" {
		t.Fatalf("departments mismatch (-want +got):\n%s", diff)
	}
	if !got.Contains("tech", "r2") || got.Contains("arcade", "r2") {
		t.Fatalf("unexpected Contains result")
	}
}

func TestAttendee_NeedsAgeConsent(t *testing.T) {
	epoch := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		birthDate time.Time
		want      bool
	}{
		{name: "unknown birth date", want: false},
		{name: "turns 18 on day one", birthDate: time.Date(2008, 5, 1, 0, 0, 0, 0, time.UTC), want: false},
		{name: "turns 18 the day after", birthDate: time.Date(2008, 5, 2, 0, 0, 0, 0, time.UTC), want: true},
		{name: "adult", birthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), want: false},
		{name: "child", birthDate: time.Date(2015, 7, 9, 0, 0, 0, 0, time.UTC), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attendee := model.Attendee{BirthDate: tc.birthDate}
			if got := attendee.NeedsAgeConsent(epoch); got != tc.want {
				t.Fatalf("NeedsAgeConsent = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAttendee_FullName(t *testing.T) {
	if got := (model.Attendee{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Fatalf("full name: %q", got)
	}
	if got := (model.Attendee{FirstName: "Ada"}).FullName(); got != "Ada" {
		t.Fatalf("first name only: %q", got)
	}
}
