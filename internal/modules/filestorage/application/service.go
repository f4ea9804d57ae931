package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/modules/filestorage/domain"
)

// FileService is the storage facade shared by the catalog (covers) and the
// invoice module (fine documents)
type FileService struct {
	storage domain.FileStorage
	logger  *zap.Logger
}

func NewFileService(storage domain.FileStorage, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{storage: storage, logger: logger}
}

// UploadWithKey stores file under key and returns its public URL
func (s *FileService) UploadWithKey(ctx context.Context, file io.Reader, key string, contentType string) (string, error) {
	url, err := s.storage.UploadFile(ctx, key, file, contentType)
	if err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	s.logger.Debug("uploaded", zap.String("key", key), zap.String("content_type", contentType))
	return url, nil
}

// UploadJSON stores v as an indented JSON document under key
func (s *FileService) UploadJSON(ctx context.Context, key string, v any) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return s.UploadWithKey(ctx, bytes.NewReader(body), key, "application/json")
}

func (s *FileService) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.storage.GetPresignedURL(ctx, key, expiration)
}

func (s *FileService) GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error) {
	return s.storage.GetPresignedDownloadURL(ctx, key, filename, expiration)
}

func (s *FileService) Delete(ctx context.Context, key string) error {
	return s.storage.DeleteFile(ctx, key)
}

// GetKeyFromUrl maps a stored public URL back to its key
func (s *FileService) GetKeyFromUrl(fileUrl string) (string, error) {
	return s.storage.GetKeyFromURL(fileUrl)
}
