package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Book is a title held by one institution or private library
type Book struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	InstitutionID   uuid.UUID  `json:"institution_id" db:"institution_id"`
	Title           string     `json:"title" db:"title"`
	Author          string     `json:"author" db:"author"`
	ISBN            string     `json:"isbn" db:"isbn"`
	Category        string     `json:"category" db:"category"`
	TotalCopies     int        `json:"total_copies" db:"total_copies"`
	AvailableCopies int        `json:"available_copies" db:"available_copies"`
	CoverURL        *string    `json:"cover_url,omitempty" db:"cover_url"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"-" db:"deleted_at"`
	IsDeleted       bool       `json:"-" db:"is_deleted"`
}

// IssuedCopies is the number of copies currently out on loan
func (b *Book) IssuedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// BookFilter contains all possible filters for listing books
type BookFilter struct {
	InstitutionID uuid.UUID
	Search        string // matches title or author
	Category      string
	AvailableOnly bool
	Limit         int
	Offset        int
	Sort          string
}

// BookRepository defines the contract for book data access
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context, filter BookFilter) ([]Book, int, error)
	ListAllByInstitution(ctx context.Context, institutionID uuid.UUID) ([]Book, error)
	Update(ctx context.Context, book *Book) error
	UpdateCover(ctx context.Context, id uuid.UUID, coverURL string) error
	Delete(ctx context.Context, id, institutionID uuid.UUID) error
}

// BookFinder provides book lookup for other modules (circulation, invoice)
type BookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)
}
