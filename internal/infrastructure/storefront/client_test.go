package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMarkPrinted(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.MarkPrinted(context.Background(), "934")

	require.NoError(t, err)
	assert.Equal(t, "/orders/934/printed", gotPath)
}

func TestClientMarkPrintedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.MarkPrinted(context.Background(), "934")

	assert.Error(t, err)
}

func TestClientBatchCompleted(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/print-batches/completed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	batchID := uuid.New()
	c := NewClient(srv.URL, time.Second, nil)
	c.BatchCompleted(context.Background(), batchID, 2, 1)

	require.NotNil(t, gotBody)
	assert.Equal(t, batchID.String(), gotBody["batch_id"])
	assert.Equal(t, float64(2), gotBody["completed"])
	assert.Equal(t, float64(1), gotBody["failed"])
}

func TestClientBatchCompletedUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond, nil)

	// Must not panic or block; the failure is logged only.
	c.BatchCompleted(context.Background(), uuid.New(), 1, 0)
}

func TestLogMarker(t *testing.T) {
	m := NewLogMarker(nil)
	assert.NoError(t, m.MarkPrinted(context.Background(), "934"))
}
