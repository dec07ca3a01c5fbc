package model

import "sort"

// Department groups jobs and the roles that gate who may fill them.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Role is a qualification defined by a department.
type Role struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
}

// RoleOption is a selectable role rendered inside a department role group.
type RoleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DeptRoles maps a department id to the role options selectable for it.
type DeptRoles map[string][]RoleOption

// Departments returns the department ids in sorted order.
func (d DeptRoles) Departments() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains reports whether roleID is an option of departmentID.
func (d DeptRoles) Contains(departmentID, roleID string) bool {
	for _, opt := range d[departmentID] {
		if opt.Value == roleID {
			return true
		}
	}
	return false
}

// BuildDeptRoles groups roles by department. Every department gets an entry,
// even when it defines no roles.
func BuildDeptRoles(departments []Department, roles []Role) DeptRoles {
	out := make(DeptRoles, len(departments))
	for _, dept := range departments {
		out[dept.ID] = []RoleOption{}
	}
	for _, role := range roles {
		out[role.DepartmentID] = append(out[role.DepartmentID], RoleOption{
			Value: role.ID,
			Label: role.Name,
		})
	}
	for id := range out {
		opts := out[id]
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	}
	return out
}
