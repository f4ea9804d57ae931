package domain

import "errors"

var (
	ErrIssueNotFound   = errors.New("issue record not found")
	ErrBookUnavailable = errors.New("no copies available")
	ErrInvalidDueDate  = errors.New("due date cannot be in the past")
	ErrStudentNotFound = errors.New("student not found")
	ErrAlreadyReturned = errors.New("book already returned")
	ErrForbidden       = errors.New("not allowed to manage issues")
	ErrExportFailed    = errors.New("failed to generate export")
)
