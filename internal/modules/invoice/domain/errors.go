package domain

import "errors"

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrAlreadyPaid         = errors.New("invoice already paid")
	ErrDocumentUnavailable = errors.New("invoice document unavailable")
	ErrForbidden           = errors.New("forbidden")
)
