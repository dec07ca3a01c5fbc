// Package deptroles serves the role options of a department as JSON so the
// job form can refresh a role group without reloading the page.
//
// The handler responds to GET and HEAD requests. The department id comes from
// the {id} path wildcard, or the department_id query parameter when the
// handler is mounted on a pattern without wildcards.
package deptroles
