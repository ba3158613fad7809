// Package storage persists defect imagery: the photos residents attach to
// requests, repair evidence uploaded by engineers, and confirmation
// signatures. Keys are prefixed by image kind so a bucket listing stays
// navigable.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Image kinds used as key prefixes.
const (
	KindRequested = "requested"
	KindRepaired  = "repaired"
	KindConfirmed = "confirmed"
	KindSignature = "signature"
)

// FileStorage defines the interface for defect image storage
type FileStorage interface {
	Save(ctx context.Context, kind string, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// Config holds configuration for storage providers
type Config struct {
	Provider  string // "local" or "s3"
	LocalPath string // Path for local storage
	LocalURL  string // Base URL for local storage
	S3Bucket  string // S3 bucket name
	S3Region  string // S3 region
	S3BaseURL string // CloudFront or S3 base URL
}

// NewFileStorage creates a file storage instance based on the provider configuration
func NewFileStorage(ctx context.Context, logger *slog.Logger, cfg Config) (FileStorage, error) {
	switch cfg.Provider {
	case "s3":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.S3Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		s3Client := s3.NewFromConfig(awsCfg)

		logger.Info("initialized S3 storage",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)

		return NewS3Storage(s3Client, cfg.S3Bucket, cfg.S3BaseURL), nil

	default: // "local"
		storage, err := NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}

		logger.Info("initialized local storage",
			slog.String("path", cfg.LocalPath),
			slog.String("url", cfg.LocalURL),
		)

		return storage, nil
	}
}

// newKey generates a unique storage key under the kind prefix.
func newKey(kind, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s/%d_%s%s", kind, time.Now().Unix(), uuid.New().String(), ext)
}

// LocalStorage implements FileStorage for local disk storage
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	for _, kind := range []string{KindRequested, KindRepaired, KindConfirmed, KindSignature} {
		if err := os.MkdirAll(filepath.Join(basePath, kind), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// Save saves an uploaded image to local disk under the kind prefix
func (s *LocalStorage) Save(ctx context.Context, kind string, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := newKey(kind, fileHeader.Filename)

	destPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

// Delete removes an image from local disk
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL returns the URL to access the image
func (s *LocalStorage) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}
