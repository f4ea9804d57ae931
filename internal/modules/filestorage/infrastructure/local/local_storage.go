package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saransh1220/libraria/internal/modules/filestorage/domain"
)

// LocalStorage keeps files under basePath and serves them from baseURL.
// Presigned URLs are plain public URLs.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (l *LocalStorage) path(key string) (string, string, error) {
	cleaned, err := domain.CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(l.basePath, filepath.FromSlash(cleaned)), nil
}

func (l *LocalStorage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	key, fullPath, err := l.path(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a temp file first so readers never see a partial document
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return l.publicURL(key), nil
}

func (l *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	_, fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	key, _, err := l.path(key)
	if err != nil {
		return "", err
	}
	return l.publicURL(key), nil
}

// GetPresignedDownloadURL appends the suggested filename as a query parameter
// for the static file handler
func (l *LocalStorage) GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error) {
	key, _, err := l.path(key)
	if err != nil {
		return "", err
	}
	if filename == "" {
		return l.publicURL(key), nil
	}
	return l.publicURL(key) + "?download=" + url.QueryEscape(filename), nil
}

func (l *LocalStorage) GetKeyFromURL(fileURL string) (string, error) {
	key, ok := strings.CutPrefix(fileURL, l.baseURL+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("url does not match expected format: %s", fileURL)
	}
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	return key, nil
}

func (l *LocalStorage) publicURL(key string) string {
	return l.baseURL + "/" + key
}
