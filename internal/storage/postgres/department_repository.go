package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// DepartmentRepository reads departments and their roles.
type DepartmentRepository struct {
	db *DB
}

func NewDepartmentRepository(db *DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// ListDepartments returns every department sorted by name.
func (r *DepartmentRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.query(ctx, `SELECT id::text, name, description FROM departments ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	depts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Department, error) {
		var d model.Department
		err := row.Scan(&d.ID, &d.Name, &d.Description)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return depts, nil
}

// GetDepartment loads one department.
func (r *DepartmentRepository) GetDepartment(ctx context.Context, id string) (model.Department, error) {
	var d model.Department
	err := r.db.queryRow(ctx, `SELECT id::text, name, description FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Description)
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return model.Department{}, model.ErrDepartmentNotFound
		}
		return model.Department{}, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

// CreateDepartment inserts a department and returns it with its id.
func (r *DepartmentRepository) CreateDepartment(ctx context.Context, name, description string) (model.Department, error) {
	d := model.Department{Name: name, Description: description}
	err := r.db.queryRow(ctx,
		`INSERT INTO departments (name, description) VALUES ($1, $2) RETURNING id::text`,
		name, description,
	).Scan(&d.ID)
	if err != nil {
		return model.Department{}, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

// CreateRole adds a role to a department.
func (r *DepartmentRepository) CreateRole(ctx context.Context, departmentID, name string) (model.Role, error) {
	role := model.Role{DepartmentID: departmentID, Name: name}
	err := r.db.queryRow(ctx,
		`INSERT INTO dept_roles (department_id, name) VALUES ($1, $2) RETURNING id::text`,
		departmentID, name,
	).Scan(&role.ID)
	if err != nil {
		if isInvalidUUID(err) || isForeignKeyViolation(err) {
			return model.Role{}, model.ErrDepartmentNotFound
		}
		return model.Role{}, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// ListRoles returns every role ordered by department and name.
func (r *DepartmentRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.query(ctx, `
SELECT id::text, department_id::text, name
FROM dept_roles
ORDER BY department_id, name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Role, error) {
		var role model.Role
		err := row.Scan(&role.ID, &role.DepartmentID, &role.Name)
		return role, err
	})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// DeptRoles builds the department to role options map the job form uses.
func (r *DepartmentRepository) DeptRoles(ctx context.Context) (model.DeptRoles, error) {
	depts, err := r.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := r.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return model.BuildDeptRoles(depts, roles), nil
}
