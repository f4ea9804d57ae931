package domain

import "errors"

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized action")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleNotAllowed     = errors.New("role cannot be registered here")
	ErrAdminExists        = errors.New("an admin account already exists")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrAccountDisabled    = errors.New("account is disabled")
)
