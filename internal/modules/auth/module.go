package auth

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/auth/application"
	"github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/auth/infrastructure/persistence/postgres"
	"github.com/saransh1220/libraria/internal/modules/auth/infrastructure/session"
	auth_http "github.com/saransh1220/libraria/internal/modules/auth/interfaces/http"
)

// Module represents the Auth module
type Module struct {
	service    *application.AuthService
	repository *postgres.PgUserRepository
	sessions   *session.RedisStore
	handler    *auth_http.AuthHandler
}

// NewModule creates and initializes the Auth module
func NewModule(db *sqlx.DB, rdb *redis.Client, jwtSecret string, jwtExpiry time.Duration, logger *zap.Logger) (*Module, error) {
	repository := postgres.NewUserRepository(db)
	sessions := session.NewRedisStore(rdb)
	service := application.NewAuthService(repository, sessions, jwtSecret, jwtExpiry, logger.Named("auth"))
	handler := auth_http.NewAuthHandler(service, logger.Named("auth_http"))

	return &Module{
		service:    service,
		repository: repository,
		sessions:   sessions,
		handler:    handler,
	}, nil
}

// Service returns the auth service; it doubles as the gateway's Authenticator
func (m *Module) Service() *application.AuthService {
	return m.service
}

// UserFinder returns the user finder interface for use by other modules
func (m *Module) UserFinder() domain.UserFinder {
	return m.repository
}

// UserRepository returns the full repository for the member directory
func (m *Module) UserRepository() domain.UserRepository {
	return m.repository
}

// HTTPHandler returns the HTTP handler for the auth module
func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}
