package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
)

type PgBookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) *PgBookRepository {
	return &PgBookRepository{db: db}
}

func (r *PgBookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	book.UpdatedAt = time.Now()

	query := `
		INSERT INTO books (
			id, institution_id, title, author, isbn, category,
			total_copies, available_copies, cover_url, created_at, updated_at
		) VALUES (
			:id, :institution_id, :title, :author, :isbn, :category,
			:total_copies, :available_copies, :cover_url, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, book)
	return err
}

func (r *PgBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book := &domain.Book{}
	query := `SELECT * FROM books WHERE id = $1 AND is_deleted = FALSE`
	err := r.db.GetContext(ctx, book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// FindByID implements domain.BookFinder
func (r *PgBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *PgBookRepository) List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int, error) {
	var results []struct {
		domain.Book
		TotalCount int `db:"total_count"`
	}

	query := `
		SELECT b.*, COUNT(*) OVER() as total_count
		FROM books b
		WHERE b.is_deleted = FALSE AND b.institution_id = $1
	`
	args := []interface{}{filter.InstitutionID}
	argId := 2

	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query += fmt.Sprintf(" AND (b.title ILIKE $%d OR b.author ILIKE $%d OR b.isbn = $%d)", argId, argId, argId+1)
		args = append(args, searchTerm, filter.Search)
		argId += 2
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND b.category = $%d", argId)
		args = append(args, filter.Category)
		argId++
	}

	if filter.AvailableOnly {
		query += " AND b.available_copies > 0"
	}

	orderBy := "b.created_at DESC"
	switch filter.Sort {
	case "oldest":
		orderBy = "b.created_at ASC"
	case "title":
		orderBy = "b.title ASC"
	case "author":
		orderBy = "b.author ASC, b.title ASC"
	}

	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argId, argId+1)
	args = append(args, filter.Limit, filter.Offset)

	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, err
	}

	if len(results) == 0 {
		return []domain.Book{}, 0, nil
	}

	books := make([]domain.Book, len(results))
	for i, res := range results {
		books[i] = res.Book
	}
	return books, results[0].TotalCount, nil
}

// ListAllByInstitution returns every live book of an institution, unpaged
func (r *PgBookRepository) ListAllByInstitution(ctx context.Context, institutionID uuid.UUID) ([]domain.Book, error) {
	books := []domain.Book{}
	query := `SELECT * FROM books WHERE institution_id = $1 AND is_deleted = FALSE ORDER BY title`
	if err := r.db.SelectContext(ctx, &books, query, institutionID); err != nil {
		return nil, err
	}
	return books, nil
}

// Update rewrites the descriptive fields and resizes the copy pool. Available
// copies shift by the same delta as total copies, and the statement refuses
// to drop below the number of copies on loan.
func (r *PgBookRepository) Update(ctx context.Context, book *domain.Book) error {
	book.UpdatedAt = time.Now()

	query := `
		UPDATE books SET
			title = :title,
			author = :author,
			isbn = :isbn,
			category = :category,
			available_copies = available_copies + (:total_copies - total_copies),
			total_copies = :total_copies,
			updated_at = :updated_at
		WHERE id = :id AND institution_id = :institution_id AND is_deleted = FALSE
			AND available_copies + (:total_copies - total_copies) >= 0
		RETURNING available_copies`

	rows, err := r.db.NamedQueryContext(ctx, query, book)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return r.missingOr(ctx, book.ID, domain.ErrCopiesInUse)
	}
	return rows.Scan(&book.AvailableCopies)
}

func (r *PgBookRepository) UpdateCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET cover_url = $1, updated_at = $2 WHERE id = $3 AND is_deleted = FALSE`,
		coverURL, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrBookNotFound)
}

// Delete soft-deletes a book. Books with copies on loan are kept.
func (r *PgBookRepository) Delete(ctx context.Context, id, institutionID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND institution_id = $3 AND is_deleted = FALSE
			AND available_copies = total_copies`,
		time.Now(), id, institutionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return r.missingOr(ctx, id, domain.ErrBookHasActiveLoans)
	}
	return nil
}

// missingOr distinguishes "no such book" from a guard in the WHERE clause
func (r *PgBookRepository) missingOr(ctx context.Context, id uuid.UUID, guardErr error) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1 AND is_deleted = FALSE)`, id); err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookNotFound
	}
	return guardErr
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
