package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/saransh1220/libraria/internal/modules/filestorage/domain"
)

// S3Config holds configuration for S3 or MinIO storage
type S3Config struct {
	BucketName     string
	Region         string
	Endpoint       string // reachable from the server, e.g. minio:9000
	PublicEndpoint string // reachable from clients, e.g. localhost:9000
	AccessKey      string
	SecretKey      string
	UseSSL         bool
}

type S3Storage struct {
	client *s3.Client
	// presignClient signs against the public endpoint so links work outside the cluster
	presignClient *s3.Client
	config        S3Config
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := newClient(awsCfg, cfg.Endpoint, cfg.UseSSL)
	presignClient := client
	if cfg.Endpoint != "" && cfg.PublicEndpoint != "" {
		presignClient = newClient(awsCfg, cfg.PublicEndpoint, cfg.UseSSL)
	}

	return &S3Storage{
		client:        client,
		presignClient: presignClient,
		config:        cfg,
	}, nil
}

// newClient builds a client for AWS, or a path-style client for a custom endpoint
func newClient(awsCfg aws.Config, endpoint string, useSSL bool) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(withScheme(endpoint, useSSL))
			o.UsePathStyle = true
		}
	})
}

func (s *S3Storage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	key, err := domain.CleanKey(key)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	return s.publicURL(key), nil
}

// publicURL is the unsigned object URL. Custom endpoints use path style,
// AWS uses https://bucket.s3.region.amazonaws.com/key.
func (s *S3Storage) publicURL(key string) string {
	switch {
	case s.config.PublicEndpoint != "":
		return fmt.Sprintf("%s/%s/%s", withScheme(s.config.PublicEndpoint, false), s.config.BucketName, key)
	case s.config.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", withScheme(s.config.Endpoint, s.config.UseSSL), s.config.BucketName, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.BucketName, s.config.Region, key)
	}
}

func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

func (s *S3Storage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.presign(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	}, expiration)
}

func (s *S3Storage) GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error) {
	if filename == "" || filename == "." {
		filename = "download"
	}
	return s.presign(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.config.BucketName),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
	}, expiration)
}

func (s *S3Storage) presign(ctx context.Context, input *s3.GetObjectInput, expiration time.Duration) (string, error) {
	request, err := s3.NewPresignClient(s.presignClient).PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// GetKeyFromURL accepts URLs on the public endpoint, the internal endpoint or
// the AWS virtual-hosted form
func (s *S3Storage) GetKeyFromURL(fileURL string) (string, error) {
	var prefixes []string
	if s.config.PublicEndpoint != "" {
		prefixes = append(prefixes, withScheme(s.config.PublicEndpoint, false)+"/"+s.config.BucketName+"/")
	}
	if s.config.Endpoint != "" {
		prefixes = append(prefixes, withScheme(s.config.Endpoint, false)+"/"+s.config.BucketName+"/")
	} else {
		prefixes = append(prefixes, fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.config.BucketName, s.config.Region))
	}

	for _, prefix := range prefixes {
		if key, ok := strings.CutPrefix(fileURL, prefix); ok && key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("url does not match expected format: %s", fileURL)
}

// withScheme prefixes endpoint with http:// unless it already has a scheme or
// TLS is on
func withScheme(endpoint string, useSSL bool) string {
	if hasHTTPPrefix(endpoint) {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
