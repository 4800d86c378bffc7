package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/shared"
)

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for document storage
	BasePath string
	// BaseURL is the URL prefix for accessing documents
	BaseURL string
	// RetentionDays is how long to keep documents (0 = forever)
	RetentionDays int
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores documents on the local file system
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based document storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "/data/receipts"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/api/v1/documents"
	}

	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", config.BasePath, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{config: config, logger: logger}, nil
}

// Store saves a document to the file system.
// Path structure: {base}/{year}/{month}/pedido-{order_id}.pdf
func (s *FileSystemStorage) Store(ctx context.Context, orderID string, pdfData []byte) (*StoreResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", shared.ErrInvalidInput)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("%w: document data is empty", shared.ErrInvalidInput)
	}

	now := time.Now()
	dirPath := filepath.Join(
		s.config.BasePath,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
	)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	fileName := ArtifactName(orderID)
	if err := os.WriteFile(filepath.Join(dirPath, fileName), pdfData, 0644); err != nil {
		return nil, fmt.Errorf("writing document file: %w", err)
	}

	relativePath := filepath.Join(
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fileName,
	)

	url := s.GetURL(relativePath)
	s.logger.Info("document stored",
		zap.String("order_id", orderID),
		zap.String("path", relativePath),
		zap.Int("size", len(pdfData)),
	)

	return &StoreResult{
		Path: relativePath,
		URL:  url,
		Size: int64(len(pdfData)),
	}, nil
}

// Get retrieves a document by its relative path
func (s *FileSystemStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document %s", shared.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening document file: %w", err)
	}
	return file, nil
}

// Delete removes a document. Deleting a missing document is not an
// error.
func (s *FileSystemStorage) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("deleting document file: %w", err)
	}

	s.logger.Info("document deleted", zap.String("path", path))
	return nil
}

// CleanupOlderThan removes documents older than the specified age
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if info.IsDir() || filepath.Ext(path) != ".pdf" {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deleted++
				s.logger.Debug("deleted old document", zap.String("path", path))
			}
		}
		return nil
	})

	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return deleted, fmt.Errorf("cleanup walk failed: %w", err)
	}

	s.logger.Info("cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// GetURL returns the accessible URL for a stored document
func (s *FileSystemStorage) GetURL(path string) string {
	return s.config.BaseURL + "/" + filepath.ToSlash(filepath.Clean(path))
}

// resolve sanitizes a relative path and rejects anything that would
// escape the base directory
func (s *FileSystemStorage) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) || containsDotDot(path) {
		s.logger.Warn("blocked potentially malicious path", zap.String("path", path))
		return "", fmt.Errorf("%w: invalid path", shared.ErrInvalidInput)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", fmt.Errorf("resolving base path: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("resolving file path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		s.logger.Warn("path escape attempt blocked", zap.String("path", path))
		return "", fmt.Errorf("%w: invalid path", shared.ErrInvalidInput)
	}
	return fullPath, nil
}

func containsDotDot(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if part == ".." {
			return true
		}
	}
	return false
}
