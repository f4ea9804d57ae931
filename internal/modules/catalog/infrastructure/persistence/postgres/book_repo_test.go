package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
	"github.com/saransh1220/libraria/internal/modules/catalog/infrastructure/persistence/postgres"
)

var bookCols = []string{"id", "institution_id", "title", "author", "isbn", "category", "total_copies", "available_copies", "cover_url", "created_at", "updated_at", "deleted_at", "is_deleted"}

func bookRow(rows *sqlmock.Rows, b domain.Book) *sqlmock.Rows {
	return rows.AddRow(b.ID, b.InstitutionID, b.Title, b.Author, b.ISBN, b.Category, b.TotalCopies, b.AvailableCopies, b.CoverURL, b.CreatedAt, b.UpdatedAt, nil, false)
}

func TestPgBookRepository_CreateAndGet(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()

	b := &domain.Book{InstitutionID: uuid.New(), Title: "Dune", Author: "Frank Herbert", TotalCopies: 3, AvailableCopies: 3}
	mock.ExpectExec("INSERT INTO books").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, b))
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	mock.ExpectQuery(`SELECT \* FROM books WHERE id = \$1 AND is_deleted = FALSE`).WithArgs(b.ID).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), *b))
	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 3, got.AvailableCopies)

	missing := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM books WHERE id = \$1`).WithArgs(missing).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBookRepository_ListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()
	inst := uuid.New()

	cols := append(append([]string{}, bookCols...), "total_count")
	now := time.Now()
	mock.ExpectQuery(`(?s)COUNT\(\*\) OVER\(\) as total_count.*b\.institution_id = \$1.*b\.title ILIKE \$2 OR b\.author ILIKE \$2 OR b\.isbn = \$3.*b\.category = \$4 AND b\.available_copies > 0 ORDER BY b\.title ASC LIMIT \$5 OFFSET \$6`).
		WithArgs(inst, "%dune%", "dune", "fiction", 10, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.New(), inst, "Dune", "Frank Herbert", "", "fiction", 2, 1, nil, now, now, nil, false, 7))

	books, total, err := repo.List(ctx, domain.BookFilter{
		InstitutionID: inst, Search: "dune", Category: "fiction", AvailableOnly: true, Limit: 10, Sort: "title",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, books, 1)
	assert.Equal(t, 1, books[0].IssuedCopies())

	mock.ExpectQuery(`FROM books b`).WithArgs(inst, 20, 40).WillReturnRows(sqlmock.NewRows(cols))
	books, total, err = repo.List(ctx, domain.BookFilter{InstitutionID: inst, Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Zero(t, total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBookRepository_ListAllByInstitution(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewBookRepository(db)
	inst := uuid.New()

	rows := sqlmock.NewRows(bookCols)
	bookRow(rows, domain.Book{ID: uuid.New(), InstitutionID: inst, Title: "A"})
	bookRow(rows, domain.Book{ID: uuid.New(), InstitutionID: inst, Title: "B"})
	mock.ExpectQuery(`SELECT \* FROM books WHERE institution_id = \$1 AND is_deleted = FALSE ORDER BY title`).
		WithArgs(inst).WillReturnRows(rows)

	books, err := repo.ListAllByInstitution(context.Background(), inst)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestPgBookRepository_Update(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()

	b := &domain.Book{ID: uuid.New(), InstitutionID: uuid.New(), Title: "Dune", TotalCopies: 5}
	mock.ExpectQuery(`UPDATE books SET`).WillReturnRows(sqlmock.NewRows([]string{"available_copies"}).AddRow(4))
	require.NoError(t, repo.Update(ctx, b))
	assert.Equal(t, 4, b.AvailableCopies)

	// guard rejected, book exists
	mock.ExpectQuery(`UPDATE books SET`).WillReturnRows(sqlmock.NewRows([]string{"available_copies"}))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(b.ID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	assert.ErrorIs(t, repo.Update(ctx, b), domain.ErrCopiesInUse)

	// book gone
	mock.ExpectQuery(`UPDATE books SET`).WillReturnRows(sqlmock.NewRows([]string{"available_copies"}))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(b.ID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	assert.ErrorIs(t, repo.Update(ctx, b), domain.ErrBookNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBookRepository_DeleteAndCover(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewBookRepository(db)
	ctx := context.Background()
	id, inst := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE books SET is_deleted = TRUE`).WithArgs(sqlmock.AnyArg(), id, inst).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, id, inst))

	mock.ExpectExec(`UPDATE books SET is_deleted = TRUE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	assert.ErrorIs(t, repo.Delete(ctx, id, inst), domain.ErrBookHasActiveLoans)

	mock.ExpectExec(`UPDATE books SET cover_url = \$1`).WithArgs("http://x/covers/a.jpg", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateCover(ctx, id, "http://x/covers/a.jpg"))

	mock.ExpectExec(`UPDATE books SET cover_url = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateCover(ctx, id, "x"), domain.ErrBookNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
