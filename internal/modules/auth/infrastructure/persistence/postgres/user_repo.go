package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/saransh1220/libraria/internal/modules/auth/domain"
)

const userColumns = `id, email, password_hash, name, role, institution_id, profile, is_active, created_at, updated_at`

// userRow is the persisted shape of domain.User. The profile variant is stored
// as JSONB and decoded by role on the way out.
type userRow struct {
	ID            uuid.UUID  `db:"id"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	Name          string     `db:"name"`
	Role          string     `db:"role"`
	InstitutionID *uuid.UUID `db:"institution_id"`
	Profile       []byte     `db:"profile"`
	IsActive      bool       `db:"is_active"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func toRow(u *domain.User) (*userRow, error) {
	profile := u.Profile
	if profile == nil {
		var err error
		if profile, err = domain.DecodeProfile(u.Role, nil); err != nil {
			return nil, err
		}
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	row := &userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         string(u.Role),
		Profile:      data,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if inst, ok := u.InstitutionID(); ok {
		row.InstitutionID = &inst
	}
	return row, nil
}

func (row *userRow) toDomain() (*domain.User, error) {
	role := domain.Role(row.Role)
	profile, err := domain.DecodeProfile(role, row.Profile)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", row.ID, err)
	}
	return &domain.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.Name,
		Role:         role,
		Profile:      profile,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

type PgUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a PostgreSQL-backed domain.UserRepository
func NewUserRepository(db *sqlx.DB) *PgUserRepository {
	return &PgUserRepository{db: db}
}

// Create implements domain.UserRepository
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	row, err := toRow(user)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :name, :role, :institution_id, :profile, :is_active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// GetByEmail implements domain.UserRepository
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByID implements domain.UserRepository
func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByID implements domain.UserFinder for other modules
func (r *PgUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// CountByRole implements domain.UserRepository
func (r *PgUserRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role))
	return n, err
}

// ListByInstitution returns one page of users of role inside an institution,
// newest first, with the total count across all pages.
func (r *PgUserRepository) ListByInstitution(ctx context.Context, institutionID uuid.UUID, role domain.Role, limit, offset int) ([]domain.User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE institution_id = $1 AND role = $2`,
		institutionID, string(role)); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users
		WHERE institution_id = $1 AND role = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &rows, query, institutionID, string(role), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, nil
}

// SetActive implements domain.UserRepository
func (r *PgUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
