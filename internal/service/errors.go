package service

import "errors"

// Domain errors shared across services.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTeacherExists      = errors.New("a teacher with this email already exists")
	ErrExamNotFound       = errors.New("exam not found")
)

// ValidationError carries field-level messages for a rejected exam
// definition. No partial write happens when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "exam definition is invalid"
}
