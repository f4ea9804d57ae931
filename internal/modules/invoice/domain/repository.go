package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, int, error)
	// MarkPaid settles an unpaid invoice; ErrAlreadyPaid when it was settled before
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}
