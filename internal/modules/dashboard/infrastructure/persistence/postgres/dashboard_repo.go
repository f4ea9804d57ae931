package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/dashboard/domain"
)

type PgDashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *PgDashboardRepository {
	return &PgDashboardRepository{db: db}
}

func (r *PgDashboardRepository) CatalogTotals(ctx context.Context, institutionID uuid.UUID) (*domain.CatalogTotals, error) {
	var totals domain.CatalogTotals
	query := `
		SELECT COUNT(*) AS total_titles,
			COALESCE(SUM(total_copies), 0) AS total_copies,
			COALESCE(SUM(available_copies), 0) AS available_copies
		FROM books
		WHERE institution_id = $1 AND is_deleted = FALSE`
	if err := r.db.GetContext(ctx, &totals, query, institutionID); err != nil {
		return nil, fmt.Errorf("failed to get catalog totals: %w", err)
	}
	return &totals, nil
}

// OutstandingFines sums the unpaid invoices of an institution
func (r *PgDashboardRepository) OutstandingFines(ctx context.Context, institutionID uuid.UUID) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE institution_id = $1 AND status = 'unpaid'`
	if err := r.db.GetContext(ctx, &total, query, institutionID); err != nil {
		return 0, fmt.Errorf("failed to get outstanding fines: %w", err)
	}
	return total, nil
}

func (r *PgDashboardRepository) CountUsersByRole(ctx context.Context) (map[authDomain.Role]int, error) {
	var rows []struct {
		Role  string `db:"role"`
		Count int    `db:"count"`
	}
	query := `SELECT role, COUNT(*) AS count FROM users GROUP BY role`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}

	counts := make(map[authDomain.Role]int, len(rows))
	for _, row := range rows {
		counts[authDomain.Role(row.Role)] = row.Count
	}
	return counts, nil
}
