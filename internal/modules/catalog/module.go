package catalog

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/catalog/application"
	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
	persistence "github.com/saransh1220/libraria/internal/modules/catalog/infrastructure/persistence/postgres"
	catalogHttp "github.com/saransh1220/libraria/internal/modules/catalog/interfaces/http"
)

// FileService covers both cover uploads and presigned reads
type FileService interface {
	application.CoverUploader
	catalogHttp.FileService
}

// Module represents the Catalog module
type Module struct {
	repository *persistence.PgBookRepository
	service    application.BookService
	handler    *catalogHttp.BookHandler
}

// NewModule creates and initializes the Catalog module
func NewModule(db *sqlx.DB, fileService FileService, redisClient *redis.Client, logger *zap.Logger) *Module {
	repository := persistence.NewBookRepository(db)
	service := application.NewBookService(repository, fileService, logger.Named("catalog"))
	handler := catalogHttp.NewBookHandler(service, fileService, redisClient, logger.Named("catalog_http"))

	return &Module{
		repository: repository,
		service:    service,
		handler:    handler,
	}
}

// BookFinder returns the book finder interface for use by other modules
func (m *Module) BookFinder() domain.BookFinder {
	return m.repository
}

// Service returns the book service
func (m *Module) Service() application.BookService {
	return m.service
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *catalogHttp.BookHandler {
	return m.handler
}
