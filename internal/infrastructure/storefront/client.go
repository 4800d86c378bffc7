// Package storefront calls back into the storefront backend when
// receipts leave the printer. The storefront flips the order's printed
// flag and refreshes the attendant's batch view.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client posts print events to the storefront backend. It implements
// both callback interfaces the coordinator accepts.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a storefront callback client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// MarkPrinted flips the order's printed flag on the storefront
func (c *Client) MarkPrinted(ctx context.Context, orderID string) error {
	return c.post(ctx, fmt.Sprintf("/orders/%s/printed", orderID), nil)
}

// BatchCompleted reports a finished multi-receipt batch. Delivery is
// best effort; a failure is logged and not retried.
func (c *Client) BatchCompleted(ctx context.Context, batchID uuid.UUID, completed, failed int) {
	payload := map[string]any{
		"batch_id":  batchID.String(),
		"completed": completed,
		"failed":    failed,
	}
	if err := c.post(ctx, "/print-batches/completed", payload); err != nil {
		c.logger.Warn("batch completion callback failed",
			zap.String("batch_id", batchID.String()),
			zap.Error(err),
		)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode callback payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

// LogMarker is the no-callback fallback. It records the printed order
// in the log so the event is not lost entirely.
type LogMarker struct {
	logger *zap.Logger
}

// NewLogMarker creates a log-only order marker
func NewLogMarker(logger *zap.Logger) *LogMarker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMarker{logger: logger}
}

// MarkPrinted logs the printed order
func (m *LogMarker) MarkPrinted(_ context.Context, orderID string) error {
	m.logger.Info("order receipt printed", zap.String("order_id", orderID))
	return nil
}

// LogNotifier is the no-callback fallback for the batch signal
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only batch notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// BatchCompleted logs the batch completion signal
func (n *LogNotifier) BatchCompleted(_ context.Context, batchID uuid.UUID, completed, failed int) {
	n.logger.Info("print batch finished",
		zap.String("batch_id", batchID.String()),
		zap.Int("completed", completed),
		zap.Int("failed", failed),
	)
}
