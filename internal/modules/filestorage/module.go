package filestorage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/filestorage/application"
	"github.com/saransh1220/libraria/internal/modules/filestorage/domain"
	"github.com/saransh1220/libraria/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/libraria/internal/modules/filestorage/infrastructure/s3"
	"github.com/saransh1220/libraria/internal/shared/infrastructure/config"
)

// UploadsPath is where the server exposes local storage
const UploadsPath = "/uploads"

// Module represents the FileStorage module
type Module struct {
	service *application.FileService
	storage domain.FileStorage
}

// NewModule picks S3 or the local filesystem from cfg. Local files are served
// from publicBaseURL + UploadsPath.
func NewModule(ctx context.Context, cfg config.FileStorageConfig, publicBaseURL string, logger *zap.Logger) (*Module, error) {
	var storage domain.FileStorage

	if cfg.UseS3 {
		s3Storage, err := s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		storage = s3Storage
		logger.Info("file storage: s3", zap.String("bucket", cfg.S3BucketName))
	} else {
		localStorage, err := local.NewLocalStorage(cfg.LocalPath, publicBaseURL+UploadsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		storage = localStorage
		logger.Info("file storage: local", zap.String("path", cfg.LocalPath))
	}

	return &Module{
		service: application.NewFileService(storage, logger.Named("filestorage")),
		storage: storage,
	}, nil
}

// Service returns the file service for use by other modules
func (m *Module) Service() *application.FileService {
	return m.service
}

// Local reports whether files live on this server's disk and need the static handler
func (m *Module) Local() bool {
	_, ok := m.storage.(*local.LocalStorage)
	return ok
}
