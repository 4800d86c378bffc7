// Package storage persists rendered receipt documents so an order's
// PDF can be fetched again after printing.
package storage

import (
	"context"
	"io"
	"time"
)

// StoreResult contains the result of storing a document
type StoreResult struct {
	// Path is the storage path (relative to base)
	Path string
	// URL is the accessible URL for the document
	URL string
	// Size is the file size in bytes
	Size int64
}

// ArtifactStorage stores and retrieves rendered receipt documents
type ArtifactStorage interface {
	// Store saves a rendered document for the given order
	Store(ctx context.Context, orderID string, pdfData []byte) (*StoreResult, error)
	// Get retrieves a document by its storage path
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a document
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes documents older than the specified age
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	// GetURL returns the accessible URL for a stored document
	GetURL(path string) string
}

// ArtifactName is the canonical file name for an order's document
func ArtifactName(orderID string) string {
	return "pedido-" + orderID + ".pdf"
}
