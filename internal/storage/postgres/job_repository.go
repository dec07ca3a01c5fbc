package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// JobRepository stores jobs with their required roles and shifts.
type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetJob loads a job by id. Unknown ids return model.ErrJobNotFound.
func (r *JobRepository) GetJob(ctx context.Context, id string) (model.Job, error) {
	const query = `
SELECT id::text, type, name, description, start_time, duration, extra15, slots, weight, department_id::text
FROM jobs
WHERE id = $1`

	var job model.Job
	var jobType string
	err := r.db.queryRow(ctx, query, id).Scan(
		&job.ID, &jobType, &job.Name, &job.Description, &job.StartTime,
		&job.Duration, &job.Extra15, &job.Slots, &job.Weight, &job.DepartmentID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return model.Job{}, model.ErrJobNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Job{}, model.ErrJobNotFound
		}
		return model.Job{}, fmt.Errorf("get job: %w", err)
	}
	job.Type = model.JobType(jobType)

	if job.RequiredRoleIDs, err = r.requiredRoles(ctx, job.ID); err != nil {
		return model.Job{}, err
	}
	if job.Shifts, err = r.shifts(ctx, job.ID); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

// ListJobs returns the jobs of a department ordered by start time.
func (r *JobRepository) ListJobs(ctx context.Context, departmentID string) ([]model.Job, error) {
	const query = `
SELECT id::text FROM jobs WHERE department_id = $1 ORDER BY start_time, name`

	rows, err := r.db.query(ctx, query, departmentID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, model.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]model.Job, 0, len(ids))
	for _, id := range ids {
		job, err := r.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// SaveJob inserts a new job or updates an existing one, replacing its
// required roles. New jobs get a fresh id written back into job.
func (r *JobRepository) SaveJob(ctx context.Context, job *model.Job) error {
	if job == nil {
		return errors.New("save job: nil job")
	}
	if job.IsNew || strings.TrimSpace(job.ID) == "" {
		job.ID = uuid.NewString()
	}

	const upsert = `
INSERT INTO jobs (id, type, name, description, start_time, duration, extra15, slots, weight, department_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	type = EXCLUDED.type,
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	start_time = EXCLUDED.start_time,
	duration = EXCLUDED.duration,
	extra15 = EXCLUDED.extra15,
	slots = EXCLUDED.slots,
	weight = EXCLUDED.weight,
	department_id = EXCLUDED.department_id`

	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.exec(ctx, upsert,
			job.ID, string(job.Type), job.Name, job.Description, job.StartTime,
			job.Duration, job.Extra15, job.Slots, job.Weight, job.DepartmentID,
		); err != nil {
			return err
		}
		if _, err := r.db.exec(ctx, `DELETE FROM job_required_roles WHERE job_id = $1`, job.ID); err != nil {
			return err
		}
		for _, roleID := range job.RequiredRoleIDs {
			if _, err := r.db.exec(ctx,
				`INSERT INTO job_required_roles (job_id, dept_role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				job.ID, roleID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return model.ErrDepartmentNotFound
		}
		return fmt.Errorf("save job: %w", err)
	}
	job.IsNew = false
	return nil
}

// DeleteJob removes a job; its shifts and role links cascade.
func (r *JobRepository) DeleteJob(ctx context.Context, id string) error {
	tag, err := r.db.exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrJobNotFound
		}
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

// AddShift assigns an attendee to a job.
func (r *JobRepository) AddShift(ctx context.Context, jobID, attendeeID string) (model.Shift, error) {
	shift := model.Shift{JobID: jobID, AttendeeID: attendeeID}
	err := r.db.queryRow(ctx,
		`INSERT INTO shifts (job_id, attendee_id) VALUES ($1, $2) RETURNING id::text`,
		jobID, attendeeID,
	).Scan(&shift.ID)
	if err != nil {
		if isInvalidUUID(err) || isForeignKeyViolation(err) {
			return model.Shift{}, model.ErrJobNotFound
		}
		return model.Shift{}, fmt.Errorf("add shift: %w", err)
	}
	return shift, nil
}

func (r *JobRepository) requiredRoles(ctx context.Context, jobID string) ([]string, error) {
	rows, err := r.db.query(ctx, `
SELECT jr.dept_role_id::text
FROM job_required_roles jr
JOIN dept_roles dr ON dr.id = jr.dept_role_id
WHERE jr.job_id = $1
ORDER BY dr.name`, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job roles: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("get job roles: %w", err)
	}
	return ids, nil
}

func (r *JobRepository) shifts(ctx context.Context, jobID string) ([]model.Shift, error) {
	rows, err := r.db.query(ctx, `
SELECT id::text, job_id::text, attendee_id::text
FROM shifts
WHERE job_id = $1
ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job shifts: %w", err)
	}
	shifts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Shift, error) {
		var s model.Shift
		err := row.Scan(&s.ID, &s.JobID, &s.AttendeeID)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("get job shifts: %w", err)
	}
	return shifts, nil
}
