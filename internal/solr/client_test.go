package solr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updateRecorder captures update handler requests for inspection.
type updateRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
	status   int
	body     string
}

func (u *updateRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)

	u.mu.Lock()
	u.payloads = append(u.payloads, payload)
	status, body := u.status, u.body
	u.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, body, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"responseHeader":{"status":0,"QTime":7}}`))
}

func (u *updateRecorder) last() map[string]any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.payloads[len(u.payloads)-1]
}

func TestAddSendsDocument(t *testing.T) {
	rec := &updateRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	resp, err := client.Add(context.Background(), InputDocument{"id": "doc-1", "content": "hello"})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, 7, resp.QTime)
	assert.Greater(t, resp.Elapsed, time.Duration(0))

	add, ok := rec.last()["add"].(map[string]any)
	require.True(t, ok)
	doc := add["doc"].(map[string]any)
	assert.Equal(t, "doc-1", doc["id"])
	assert.Equal(t, "hello", doc["content"])
	assert.NotContains(t, add, "commitWithin")
}

func TestAddWithinCarriesDeadline(t *testing.T) {
	rec := &updateRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.AddWithin(context.Background(), InputDocument{"id": "doc-2"}, 5*time.Second)
	require.NoError(t, err)

	add := rec.last()["add"].(map[string]any)
	assert.Equal(t, float64(5000), add["commitWithin"])
}

func TestCommit(t *testing.T) {
	rec := &updateRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	resp, err := client.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Status)

	assert.Contains(t, rec.last(), "commit")
}

func TestServerFaultSurfacesStatusError(t *testing.T) {
	rec := &updateRecorder{status: http.StatusBadRequest, body: "unknown field"}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.Add(context.Background(), InputDocument{"bogus": true})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Contains(t, statusErr.Body, "unknown field")
}

func TestTransportFault(t *testing.T) {
	srv := httptest.NewServer(&updateRecorder{})
	srv.Close() // connection refused from here on

	client := NewHTTPClient(srv.URL)
	_, err := client.Add(context.Background(), InputDocument{"id": "x"})
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr), "transport faults are not HTTP faults")
}
