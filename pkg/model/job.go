package model

import (
	"slices"
	"time"
)

// JobType classifies a job by the part of the event it staffs.
type JobType string

const (
	JobTypeSetup    JobType = "setup"
	JobTypeTeardown JobType = "teardown"
	JobTypeRegular  JobType = "regular"
	JobTypeOther    JobType = "other"
)

// JobTypes lists every known job type in display order.
func JobTypes() []JobType {
	return []JobType{JobTypeRegular, JobTypeSetup, JobTypeTeardown, JobTypeOther}
}

// Label returns the human readable name of the job type.
func (t JobType) Label() string {
	switch t {
	case JobTypeSetup:
		return "Setup"
	case JobTypeTeardown:
		return "Teardown"
	case JobTypeRegular:
		return "Regular"
	case JobTypeOther:
		return "Other"
	default:
		return string(t)
	}
}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	return slices.Contains(JobTypes(), t)
}

// Job is a schedulable block of work with a number of volunteer slots.
type Job struct {
	ID              string    `json:"db_id"`
	Type            JobType   `json:"type"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	Duration        int       `json:"duration"`
	Extra15         bool      `json:"extra15"`
	Slots           int       `json:"slots"`
	Weight          float64   `json:"weight"`
	DepartmentID    string    `json:"department_id"`
	RequiredRoleIDs []string  `json:"required_roles_ids"`
	Shifts          []Shift   `json:"shifts"`

	// IsNew is set for jobs that have not been persisted yet.
	IsNew bool `json:"is_new"`
}

// NewJob returns an unsaved job in the given department with the stock
// defaults used by the admin form.
func NewJob(departmentID string) Job {
	return Job{
		Type:         JobTypeRegular,
		Duration:     1,
		Slots:        1,
		Weight:       1.0,
		DepartmentID: departmentID,
		IsNew:        true,
	}
}

// FilledSlots is the number of shifts already assigned to the job.
func (j Job) FilledSlots() int {
	return len(j.Shifts)
}

// HasRole reports whether roleID is among the job's required roles.
func (j Job) HasRole(roleID string) bool {
	return slices.Contains(j.RequiredRoleIDs, roleID)
}

// EndTime is the start time plus the duration in hours, with fifteen extra
// minutes when Extra15 is set.
func (j Job) EndTime() time.Time {
	end := j.StartTime.Add(time.Duration(j.Duration) * time.Hour)
	if j.Extra15 {
		end = end.Add(15 * time.Minute)
	}
	return end
}

// Shift is a volunteer assigned to one slot of a job.
type Shift struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	AttendeeID string `json:"attendee_id"`
}
