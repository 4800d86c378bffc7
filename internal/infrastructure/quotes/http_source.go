package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/acaishop/printing/internal/domain/order"
)

// HTTPSource fetches quotations from a remote endpoint returning
// {"text": "...", "attribution": "..."}
type HTTPSource struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPSource creates a remote quotation source with a bounded
// per-request timeout
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type quotePayload struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

// Quote fetches one quotation from the remote endpoint
func (s *HTTPSource) Quote(ctx context.Context) (order.Quotation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return order.Quotation{}, fmt.Errorf("building quotation request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return order.Quotation{}, fmt.Errorf("fetching quotation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return order.Quotation{}, fmt.Errorf("quotation endpoint returned status %d", resp.StatusCode)
	}

	var payload quotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return order.Quotation{}, fmt.Errorf("decoding quotation response: %w", err)
	}
	if strings.TrimSpace(payload.Text) == "" {
		return order.Quotation{}, fmt.Errorf("quotation endpoint returned empty text")
	}

	return order.Quotation{
		Text:        strings.TrimSpace(payload.Text),
		Attribution: strings.TrimSpace(payload.Attribution),
	}, nil
}
