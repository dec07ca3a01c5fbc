package model

import "errors"

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrAttendeeNotFound   = errors.New("attendee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrInvalidID          = errors.New("invalid id")
)
