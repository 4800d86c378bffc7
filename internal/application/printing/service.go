// Package printing coordinates receipt rendering and print dispatch
// for the storefront's order flow.
package printing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/order"
	"github.com/acaishop/printing/internal/domain/receipt"
	"github.com/acaishop/printing/internal/domain/shared"
	"github.com/acaishop/printing/internal/infrastructure/pdfgen"
	"github.com/acaishop/printing/internal/infrastructure/quotes"
	"github.com/acaishop/printing/internal/infrastructure/storage"
)

// PrintService handles printing-related business operations
type PrintService struct {
	coordinator *Coordinator
	builder     *receipt.Builder
	docRenderer *pdfgen.DocumentRenderer
	artifacts   storage.ArtifactStorage
	quoteSource quotes.Source
	store       order.Store
	logger      *zap.Logger

	mu        sync.Mutex
	documents map[string]string // order ID -> artifact storage path
}

// NewPrintService creates a new PrintService
func NewPrintService(
	coordinator *Coordinator,
	builder *receipt.Builder,
	docRenderer *pdfgen.DocumentRenderer,
	artifacts storage.ArtifactStorage,
	quoteSource quotes.Source,
	store order.Store,
	logger *zap.Logger,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintService{
		coordinator: coordinator,
		builder:     builder,
		docRenderer: docRenderer,
		artifacts:   artifacts,
		quoteSource: quoteSource,
		store:       store,
		logger:      logger,
		documents:   make(map[string]string),
	}
}

// DispatchReceipt queues a single order's receipt for printing
func (s *PrintService) DispatchReceipt(ctx context.Context, ord *order.Order) (*BatchResponse, error) {
	return s.DispatchBatch(ctx, []*order.Order{ord})
}

// DispatchBatch queues one receipt per order, printed in sequence
func (s *PrintService) DispatchBatch(ctx context.Context, orders []*order.Order) (*BatchResponse, error) {
	batchID, err := s.coordinator.EnqueueBatch(ctx, orders)
	if err != nil {
		return nil, err
	}
	jobs, err := s.coordinator.Batch(batchID)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batchID, jobs), nil
}

// CancelBatch cancels every not-yet-started job of the batch
func (s *PrintService) CancelBatch(_ context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	if err := s.coordinator.CancelBatch(batchID); err != nil {
		return nil, err
	}
	jobs, err := s.coordinator.Batch(batchID)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batchID, jobs), nil
}

// JobStatus returns the current state of a print job
func (s *PrintService) JobStatus(_ context.Context, jobID uuid.UUID) (*JobSnapshot, error) {
	snapshot, err := s.coordinator.Job(jobID)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// BatchStatus returns the current state of a batch
func (s *PrintService) BatchStatus(_ context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	jobs, err := s.coordinator.Batch(batchID)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batchID, jobs), nil
}

// GenerateDocument renders the order's receipt as a PDF and stores it.
// The artifact name is deterministic, so regenerating an order's
// document replaces the previous one.
func (s *PrintService) GenerateDocument(ctx context.Context, ord *order.Order) (*DocumentResponse, error) {
	if ord == nil || ord.ID == "" {
		return nil, fmt.Errorf("%w: order is required", shared.ErrInvalidInput)
	}

	quote := order.Quotation{}
	if s.quoteSource != nil {
		if q, err := s.quoteSource.Quote(ctx); err == nil {
			quote = q
		} else {
			s.logger.Warn("quotation unavailable for document", zap.Error(err))
		}
	}

	model := s.builder.Build(ord, s.store, quote)
	result, err := s.docRenderer.Render(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	stored, err := s.artifacts.Store(ctx, ord.ID, result.PDFData)
	if err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}

	s.mu.Lock()
	s.documents[ord.ID] = stored.Path
	s.mu.Unlock()

	s.logger.Info("document generated",
		zap.String("order_id", ord.ID),
		zap.String("path", stored.Path),
		zap.Float64("page_height_mm", result.PageHeightMM),
		zap.Bool("repassed", result.Repassed),
	)

	return &DocumentResponse{
		OrderID:      ord.ID,
		FileName:     storage.ArtifactName(ord.ID),
		Path:         stored.Path,
		URL:          stored.URL,
		Size:         stored.Size,
		PageHeightMM: result.PageHeightMM,
	}, nil
}

// OpenDocument streams a previously generated document for the order
func (s *PrintService) OpenDocument(ctx context.Context, orderID string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	path, ok := s.documents[orderID]
	s.mu.Unlock()
	if !ok {
		return nil, "", fmt.Errorf("%w: no document for order %s", shared.ErrNotFound, orderID)
	}

	reader, err := s.artifacts.Get(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return reader, storage.ArtifactName(orderID), nil
}
