package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-staffdesk/internal/storage/postgres"
	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/model"
)

const testDBEnv = "STAFFDESK_TEST_DATABASE_URL"

func newTestStore(t *testing.T) (*postgres.Store, context.Context) {
	t.Helper()

	dsn := os.Getenv(testDBEnv)
	if dsn == "" {
		t.Skipf("skipping Postgres integration tests: %s not set", testDBEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	db, err := postgres.Open(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.RunMigrations(ctx)
	require.NoError(t, err)

	_, err = db.Pool().Exec(ctx, `TRUNCATE sent_emails, job_defaults, shifts, job_required_roles, jobs, dept_roles, attendees, departments CASCADE`)
	require.NoError(t, err)

	return postgres.NewStore(db), ctx
}

func TestRunMigrations_Idempotent(t *testing.T) {
	store, ctx := newTestStore(t)

	applied, err := store.DB.RunMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestDepartments_SortedAndDeptRoles(t *testing.T) {
	store, ctx := newTestStore(t)

	techops, err := store.Departments.CreateDepartment(ctx, "TechOps", "")
	require.NoError(t, err)
	arcade, err := store.Departments.CreateDepartment(ctx, "Arcade", "Cabinets")
	require.NoError(t, err)
	lead, err := store.Departments.CreateRole(ctx, arcade.ID, "Lead")
	require.NoError(t, err)
	tech, err := store.Departments.CreateRole(ctx, arcade.ID, "Technician")
	require.NoError(t, err)

	depts, err := store.Departments.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "Arcade", depts[0].Name)
	assert.Equal(t, "TechOps", depts[1].Name)

	deptRoles, err := store.Departments.DeptRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.RoleOption{
		{Value: lead.ID, Label: "Lead"},
		{Value: tech.ID, Label: "Technician"},
	}, deptRoles[arcade.ID])
	assert.Empty(t, deptRoles[techops.ID])

	_, err = store.Departments.GetDepartment(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrDepartmentNotFound)
}

func TestJobs_SaveGetDelete(t *testing.T) {
	store, ctx := newTestStore(t)

	dept, err := store.Departments.CreateDepartment(ctx, "Arcade", "")
	require.NoError(t, err)
	role, err := store.Departments.CreateRole(ctx, dept.ID, "Technician")
	require.NoError(t, err)

	job := model.NewJob(dept.ID)
	job.Type = model.JobTypeSetup
	job.Name = "Cabinet Unload"
	job.StartTime = time.Date(2026, 4, 30, 14, 0, 0, 0, time.UTC)
	job.Duration = 3
	job.Slots = 4
	job.Weight = 1.5
	job.RequiredRoleIDs = []string{role.ID}

	require.NoError(t, store.Jobs.SaveJob(ctx, &job))
	require.NotEmpty(t, job.ID)
	assert.False(t, job.IsNew)

	attendee := model.Attendee{FirstName: "Robin", Email: "robin@example.org"}
	require.NoError(t, store.Attendees.CreateAttendee(ctx, &attendee))
	_, err = store.Jobs.AddShift(ctx, job.ID, attendee.ID)
	require.NoError(t, err)

	got, err := store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeSetup, got.Type)
	assert.Equal(t, "Cabinet Unload", got.Name)
	assert.True(t, got.StartTime.Equal(job.StartTime))
	assert.Equal(t, 1.5, got.Weight)
	assert.Equal(t, []string{role.ID}, got.RequiredRoleIDs)
	assert.Equal(t, 1, got.FilledSlots())

	got.Name = "Cabinet Load"
	got.RequiredRoleIDs = nil
	require.NoError(t, store.Jobs.SaveJob(ctx, &got))
	updated, err := store.Jobs.GetJob(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabinet Load", updated.Name)
	assert.Empty(t, updated.RequiredRoleIDs)

	jobs, err := store.Jobs.ListJobs(ctx, dept.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	require.NoError(t, store.Jobs.DeleteJob(ctx, got.ID))
	_, err = store.Jobs.GetJob(ctx, got.ID)
	assert.ErrorIs(t, err, model.ErrJobNotFound)
	assert.ErrorIs(t, store.Jobs.DeleteJob(ctx, got.ID), model.ErrJobNotFound)
	assert.ErrorIs(t, store.Jobs.DeleteJob(ctx, "nope"), model.ErrJobNotFound)
}

func TestJobs_SaveUnknownDepartment(t *testing.T) {
	store, ctx := newTestStore(t)

	job := model.NewJob("00000000-0000-4000-8000-000000000000")
	job.Name = "Orphan"
	job.StartTime = time.Now()
	err := store.Jobs.SaveJob(ctx, &job)
	assert.ErrorIs(t, err, model.ErrDepartmentNotFound)
}

func TestConsentStore(t *testing.T) {
	store, ctx := newTestStore(t)
	epoch := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	minor := model.Attendee{FirstName: "Robin", Email: "robin@example.org",
		BirthDate: time.Date(2010, 2, 14, 0, 0, 0, 0, time.UTC)}
	turns18 := model.Attendee{FirstName: "Lee", Email: "lee@example.org",
		BirthDate: time.Date(2008, 5, 1, 0, 0, 0, 0, time.UTC)}
	noEmail := model.Attendee{FirstName: "Kai",
		BirthDate: time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, a := range []*model.Attendee{&minor, &turns18, &noEmail} {
		require.NoError(t, store.Attendees.CreateAttendee(ctx, a))
	}

	consent := store.Consent()
	candidates, err := consent.ListConsentCandidates(ctx, epoch)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, minor.ID, candidates[0].ID)

	sent, err := consent.HasSent(ctx, email.AgeConsentIdent, minor.ID)
	require.NoError(t, err)
	assert.False(t, sent)

	record := model.SentEmail{Ident: email.AgeConsentIdent, Model: email.AttendeeModel, FKID: minor.ID,
		To: minor.Email, Subject: "Consent"}
	require.NoError(t, consent.RecordSent(ctx, record))
	require.NoError(t, consent.RecordSent(ctx, record))

	sent, err = consent.HasSent(ctx, email.AgeConsentIdent, minor.ID)
	require.NoError(t, err)
	assert.True(t, sent)

	log, err := store.Emails.ListSent(ctx, email.AgeConsentIdent)
	require.NoError(t, err)
	assert.Len(t, log, 1)

	_, err = store.Attendees.GetAttendee(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrInvalidID)
}

func TestDefaults_RoundTrip(t *testing.T) {
	store, ctx := newTestStore(t)

	dept, err := store.Departments.CreateDepartment(ctx, "Arcade", "")
	require.NoError(t, err)

	empty, err := store.Defaults.GetDefaults(ctx, dept.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	want := map[string]string{"type": "setup", "duration": "3"}
	require.NoError(t, store.Defaults.SaveDefaults(ctx, dept.ID, want))
	got, err := store.Defaults.GetDefaults(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
