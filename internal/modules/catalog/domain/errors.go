package domain

import "errors"

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrUnauthorized       = errors.New("unauthorized action")
	ErrInvalidCopies      = errors.New("total copies must be at least 1")
	ErrCopiesInUse        = errors.New("total copies cannot drop below copies currently issued")
	ErrBookHasActiveLoans = errors.New("book has copies on loan")
	ErrInvalidCover       = errors.New("cover must be a JPEG, PNG or GIF image")
)
