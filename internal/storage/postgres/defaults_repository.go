package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// DefaultsRepository keeps the job form defaults captured per department.
type DefaultsRepository struct {
	db *DB
}

func NewDefaultsRepository(db *DB) *DefaultsRepository {
	return &DefaultsRepository{db: db}
}

// GetDefaults returns the saved defaults for a department, or an empty map.
func (r *DefaultsRepository) GetDefaults(ctx context.Context, departmentID string) (map[string]string, error) {
	defaults := map[string]string{}
	err := r.db.queryRow(ctx, `SELECT defaults FROM job_defaults WHERE department_id = $1`, departmentID).Scan(&defaults)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("get job defaults: %w", err)
	}
	return defaults, nil
}

// SaveDefaults replaces the defaults for a department.
func (r *DefaultsRepository) SaveDefaults(ctx context.Context, departmentID string, defaults map[string]string) error {
	if defaults == nil {
		defaults = map[string]string{}
	}
	_, err := r.db.exec(ctx, `
INSERT INTO job_defaults (department_id, defaults, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (department_id) DO UPDATE SET defaults = EXCLUDED.defaults, updated_at = NOW()`,
		departmentID, defaults,
	)
	if err != nil {
		if isInvalidUUID(err) || isForeignKeyViolation(err) {
			return model.ErrDepartmentNotFound
		}
		return fmt.Errorf("save job defaults: %w", err)
	}
	return nil
}
