package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

func TestDefaultDepartment_FirstByName(t *testing.T) {
	departments := []model.Department{
		{ID: "dept-techops", Name: "TechOps"},
		{ID: "dept-stops", Name: "Staff Ops"},
		{ID: "dept-arcade", Name: "Arcade"},
	}
	assert.Equal(t, "dept-arcade", defaultDepartment(departments))
	assert.Empty(t, defaultDepartment(nil))
}
