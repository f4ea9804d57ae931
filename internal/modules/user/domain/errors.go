package domain

import "errors"

var (
	// ErrMemberNotFound also covers members of other institutions, so ids
	// don't leak across tenants
	ErrMemberNotFound = errors.New("member not found")
	ErrForbidden      = errors.New("not allowed to manage this member")
	ErrInvalidRole    = errors.New("role must be student or librarian")
)
