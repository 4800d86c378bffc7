package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appprinting "github.com/acaishop/printing/internal/application/printing"
	"github.com/acaishop/printing/internal/domain/order"
	"github.com/acaishop/printing/internal/interfaces/http/dto"
)

// PrintOperations is the application surface the handler depends on
type PrintOperations interface {
	DispatchReceipt(ctx context.Context, ord *order.Order) (*appprinting.BatchResponse, error)
	DispatchBatch(ctx context.Context, orders []*order.Order) (*appprinting.BatchResponse, error)
	CancelBatch(ctx context.Context, batchID uuid.UUID) (*appprinting.BatchResponse, error)
	JobStatus(ctx context.Context, jobID uuid.UUID) (*appprinting.JobSnapshot, error)
	BatchStatus(ctx context.Context, batchID uuid.UUID) (*appprinting.BatchResponse, error)
	GenerateDocument(ctx context.Context, ord *order.Order) (*appprinting.DocumentResponse, error)
	OpenDocument(ctx context.Context, orderID string) (io.ReadCloser, string, error)
}

// PrintHandler exposes the receipt printing operations over HTTP
type PrintHandler struct {
	BaseHandler
	service PrintOperations
	logger  *zap.Logger
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(service PrintOperations, logger *zap.Logger) *PrintHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintHandler{service: service, logger: logger}
}

// Print queues a single order's receipt
// POST /api/v1/print
func (h *PrintHandler) Print(c *gin.Context) {
	var req dto.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ord, err := req.Order.ToDomain()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.DispatchReceipt(c.Request.Context(), ord)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// PrintBatch queues several receipts printed in sequence
// POST /api/v1/print/batch
func (h *PrintHandler) PrintBatch(c *gin.Context) {
	var req dto.BatchPrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, err := dto.ToDomainOrders(req.Orders)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.DispatchBatch(c.Request.Context(), orders)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// CancelBatch cancels the not-yet-started jobs of a batch
// POST /api/v1/print/batch/:id/cancel
func (h *PrintHandler) CancelBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid batch ID")
		return
	}

	resp, err := h.service.CancelBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetJob reports the state of one print job
// GET /api/v1/print/jobs/:id
func (h *PrintHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid job ID")
		return
	}

	snapshot, err := h.service.JobStatus(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// GetBatch reports the state of a batch and its jobs
// GET /api/v1/print/batches/:id
func (h *PrintHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid batch ID")
		return
	}

	resp, err := h.service.BatchStatus(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateDocument renders and stores the order's receipt PDF
// POST /api/v1/documents
func (h *PrintHandler) GenerateDocument(c *gin.Context) {
	var req dto.GenerateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ord, err := req.Order.ToDomain()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.GenerateDocument(c.Request.Context(), ord)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DownloadDocument streams a stored receipt document
// GET /api/v1/documents/:order_id/download
func (h *PrintHandler) DownloadDocument(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		h.BadRequest(c, "order ID is required")
		return
	}

	reader, fileName, err := h.service.OpenDocument(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Warn("streaming document interrupted",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

// RegisterRoutes registers all print and document routes
func (h *PrintHandler) RegisterRoutes(rg *gin.RouterGroup) {
	printing := rg.Group("/print")
	{
		printing.POST("", h.Print)
		printing.POST("/batch", h.PrintBatch)
		printing.POST("/batch/:id/cancel", h.CancelBatch)
		printing.GET("/jobs/:id", h.GetJob)
		printing.GET("/batches/:id", h.GetBatch)
	}

	documents := rg.Group("/documents")
	{
		documents.POST("", h.GenerateDocument)
		documents.GET("/:order_id/download", h.DownloadDocument)
	}
}
