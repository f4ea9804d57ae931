package http

import (
	"context"
	"time"
)

// FileService is the part of the file store the handler needs to hand out
// short-lived cover links
type FileService interface {
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	GetKeyFromUrl(fileUrl string) (string, error)
}
