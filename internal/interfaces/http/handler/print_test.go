package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appprinting "github.com/acaishop/printing/internal/application/printing"
	"github.com/acaishop/printing/internal/domain/order"
	"github.com/acaishop/printing/internal/domain/shared"
	"github.com/acaishop/printing/internal/interfaces/http/dto"
	"github.com/acaishop/printing/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockPrintService implements PrintOperations for testing
type MockPrintService struct {
	mock.Mock
}

func (m *MockPrintService) DispatchReceipt(ctx context.Context, ord *order.Order) (*appprinting.BatchResponse, error) {
	args := m.Called(ctx, ord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.BatchResponse), args.Error(1)
}

func (m *MockPrintService) DispatchBatch(ctx context.Context, orders []*order.Order) (*appprinting.BatchResponse, error) {
	args := m.Called(ctx, orders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.BatchResponse), args.Error(1)
}

func (m *MockPrintService) CancelBatch(ctx context.Context, batchID uuid.UUID) (*appprinting.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.BatchResponse), args.Error(1)
}

func (m *MockPrintService) JobStatus(ctx context.Context, jobID uuid.UUID) (*appprinting.JobSnapshot, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.JobSnapshot), args.Error(1)
}

func (m *MockPrintService) BatchStatus(ctx context.Context, batchID uuid.UUID) (*appprinting.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.BatchResponse), args.Error(1)
}

func (m *MockPrintService) GenerateDocument(ctx context.Context, ord *order.Order) (*appprinting.DocumentResponse, error) {
	args := m.Called(ctx, ord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprinting.DocumentResponse), args.Error(1)
}

func (m *MockPrintService) OpenDocument(ctx context.Context, orderID string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func setupPrintRouter(svc PrintOperations) *gin.Engine {
	engine := gin.New()
	h := NewPrintHandler(svc, nil)
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func orderBody(t *testing.T, id string) map[string]any {
	t.Helper()
	return map[string]any{
		"id":            id,
		"customer_name": "Maria",
		"table_label":   "Mesa 3",
		"items": []map[string]any{
			{
				"product_name": "Açaí 500ml",
				"unit_price":   "18.00",
				"quantity":     1,
			},
		},
		"subtotal":   "18.00",
		"total":      "18.00",
		"payment":    "PIX",
		"created_at": time.Date(2025, 6, 10, 19, 30, 0, 0, time.UTC),
	}
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPrintHandlerPrint(t *testing.T) {
	svc := new(MockPrintService)
	batchID := uuid.New()
	svc.On("DispatchReceipt", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.ID == "934" && o.TableLabel == "Mesa 3"
	})).Return(&appprinting.BatchResponse{
		BatchID: batchID,
		Jobs: []appprinting.JobSnapshot{
			{JobID: uuid.New(), BatchID: batchID, OrderID: "934", Status: "QUEUED"},
		},
	}, nil)

	engine := setupPrintRouter(svc)
	w := postJSON(t, engine, "/api/v1/print", map[string]any{"order": orderBody(t, "934")})

	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestPrintHandlerPrintBindingError(t *testing.T) {
	svc := new(MockPrintService)
	engine := setupPrintRouter(svc)

	body := orderBody(t, "934")
	delete(body, "payment")
	w := postJSON(t, engine, "/api/v1/print", map[string]any{"order": body})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	svc.AssertNotCalled(t, "DispatchReceipt")
}

func TestPrintHandlerPrintInvalidPayment(t *testing.T) {
	svc := new(MockPrintService)
	engine := setupPrintRouter(svc)

	body := orderBody(t, "934")
	body["payment"] = "CHEQUE"
	w := postJSON(t, engine, "/api/v1/print", map[string]any{"order": body})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintHandlerPrintBatch(t *testing.T) {
	svc := new(MockPrintService)
	batchID := uuid.New()
	svc.On("DispatchBatch", mock.Anything, mock.MatchedBy(func(orders []*order.Order) bool {
		return len(orders) == 2
	})).Return(&appprinting.BatchResponse{BatchID: batchID}, nil)

	engine := setupPrintRouter(svc)
	w := postJSON(t, engine, "/api/v1/print/batch", map[string]any{
		"orders": []map[string]any{orderBody(t, "935"), orderBody(t, "936")},
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	svc.AssertExpectations(t)
}

func TestPrintHandlerPrintBatchEmpty(t *testing.T) {
	svc := new(MockPrintService)
	engine := setupPrintRouter(svc)

	w := postJSON(t, engine, "/api/v1/print/batch", map[string]any{"orders": []map[string]any{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "DispatchBatch")
}

func TestPrintHandlerCancelBatch(t *testing.T) {
	svc := new(MockPrintService)
	batchID := uuid.New()
	svc.On("CancelBatch", mock.Anything, batchID).Return(&appprinting.BatchResponse{
		BatchID:  batchID,
		Finished: true,
	}, nil)

	engine := setupPrintRouter(svc)
	w := postJSON(t, engine, fmt.Sprintf("/api/v1/print/batch/%s/cancel", batchID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPrintHandlerCancelBatchBadID(t *testing.T) {
	svc := new(MockPrintService)
	engine := setupPrintRouter(svc)

	w := postJSON(t, engine, "/api/v1/print/batch/not-a-uuid/cancel", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CancelBatch")
}

func TestPrintHandlerGetJob(t *testing.T) {
	svc := new(MockPrintService)
	jobID := uuid.New()
	svc.On("JobStatus", mock.Anything, jobID).Return(&appprinting.JobSnapshot{
		JobID:   jobID,
		OrderID: "934",
		Status:  "COMPLETED",
	}, nil)

	engine := setupPrintRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/print/jobs/"+jobID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestPrintHandlerGetJobNotFound(t *testing.T) {
	svc := new(MockPrintService)
	jobID := uuid.New()
	svc.On("JobStatus", mock.Anything, jobID).Return(nil, shared.ErrNotFound)

	engine := setupPrintRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/print/jobs/"+jobID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
}

func TestPrintHandlerGetBatch(t *testing.T) {
	svc := new(MockPrintService)
	batchID := uuid.New()
	svc.On("BatchStatus", mock.Anything, batchID).Return(&appprinting.BatchResponse{
		BatchID: batchID,
		Jobs: []appprinting.JobSnapshot{
			{JobID: uuid.New(), BatchID: batchID, OrderID: "934", Status: "COMPLETED"},
			{JobID: uuid.New(), BatchID: batchID, OrderID: "935", Status: "CANCELLED"},
		},
		Finished: true,
	}, nil)

	engine := setupPrintRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/print/batches/"+batchID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrintHandlerGenerateDocument(t *testing.T) {
	svc := new(MockPrintService)
	svc.On("GenerateDocument", mock.Anything, mock.Anything).Return(&appprinting.DocumentResponse{
		OrderID:      "934",
		FileName:     "pedido-934.pdf",
		PageHeightMM: 156,
	}, nil)

	engine := setupPrintRouter(svc)
	w := postJSON(t, engine, "/api/v1/documents", map[string]any{"order": orderBody(t, "934")})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestPrintHandlerDownloadDocument(t *testing.T) {
	svc := new(MockPrintService)
	body := io.NopCloser(strings.NewReader("%PDF-1.4 fake"))
	svc.On("OpenDocument", mock.Anything, "934").Return(body, "pedido-934.pdf", nil)

	engine := setupPrintRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/934/download", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pedido-934.pdf")
	assert.Equal(t, "%PDF-1.4 fake", w.Body.String())
}

func TestPrintHandlerDownloadDocumentNotFound(t *testing.T) {
	svc := new(MockPrintService)
	svc.On("OpenDocument", mock.Anything, "999").Return(nil, "", shared.ErrNotFound)

	engine := setupPrintRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/999/download", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
