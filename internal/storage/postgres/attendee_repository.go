package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// AttendeeRepository reads and writes attendees.
type AttendeeRepository struct {
	db *DB
}

func NewAttendeeRepository(db *DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

const attendeeColumns = `id::text, first_name, last_name, email, birthdate`

func scanAttendee(row pgx.Row) (model.Attendee, error) {
	var a model.Attendee
	var birth *time.Time
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &birth); err != nil {
		return model.Attendee{}, err
	}
	if birth != nil {
		a.BirthDate = *birth
	}
	return a, nil
}

// GetAttendee loads an attendee by id.
func (r *AttendeeRepository) GetAttendee(ctx context.Context, id string) (model.Attendee, error) {
	a, err := scanAttendee(r.db.queryRow(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id))
	if err != nil {
		if isInvalidUUID(err) {
			return model.Attendee{}, model.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Attendee{}, model.ErrAttendeeNotFound
		}
		return model.Attendee{}, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

// CreateAttendee inserts an attendee and fills in its id.
func (r *AttendeeRepository) CreateAttendee(ctx context.Context, a *model.Attendee) error {
	var birth *time.Time
	if !a.BirthDate.IsZero() {
		birth = &a.BirthDate
	}
	err := r.db.queryRow(ctx, `
INSERT INTO attendees (first_name, last_name, email, birthdate)
VALUES ($1, $2, $3, $4)
RETURNING id::text`,
		a.FirstName, a.LastName, a.Email, birth,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create attendee: %w", err)
	}
	return nil
}

// ListConsentCandidates returns attendees with an email address who are
// younger than model.ConsentAge on the epoch day.
func (r *AttendeeRepository) ListConsentCandidates(ctx context.Context, epoch time.Time) ([]model.Attendee, error) {
	cutoff := epoch.AddDate(-model.ConsentAge, 0, 0)
	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := r.db.query(ctx, `
SELECT `+attendeeColumns+`
FROM attendees
WHERE birthdate IS NOT NULL AND birthdate > $1 AND email <> ''
ORDER BY last_name, first_name, id`, cutoffDay)
	if err != nil {
		return nil, fmt.Errorf("list consent candidates: %w", err)
	}
	attendees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Attendee, error) {
		return scanAttendee(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list consent candidates: %w", err)
	}
	return attendees, nil
}
