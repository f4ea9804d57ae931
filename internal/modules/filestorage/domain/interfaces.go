package domain

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrInvalidKey is returned for keys that are empty, absolute or escape the
// storage root
var ErrInvalidKey = errors.New("invalid storage key")

// FileStorage is implemented by the S3 (or MinIO) bucket and the local
// filesystem. Keys are slash separated, e.g. covers/<institution>/<book>.jpg.
type FileStorage interface {
	// UploadFile stores file under key and returns its public URL
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	// GetPresignedURL returns a temporary URL for viewing key
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	// GetPresignedDownloadURL returns a temporary URL that downloads key as filename
	GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error)
	GetKeyFromURL(url string) (string, error)
}

// CleanKey normalises key and rejects anything outside the storage root
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
