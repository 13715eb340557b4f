package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChildDocumentsField is the reserved field under which nested child
// documents are attached to a parent input document.
const ChildDocumentsField = "_childDocuments_"

// InputDocument is a flat set of named field values ready for an index
// write. Values are plain strings/slices, or {"set": value} maps when the
// caller requested atomic partial updates.
type InputDocument map[string]any

// UpdateResponse reports the outcome of a successful update request.
type UpdateResponse struct {
	// Status is the index-side status code (0 on success).
	Status int
	// QTime is the server-reported processing time in milliseconds.
	QTime int
	// Elapsed is the round-trip time observed by the client.
	Elapsed time.Duration
}

// StatusError is an HTTP-level fault returned by the index.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solr: HTTP error %d: %s", e.Code, e.Body)
}

// Client is the index collaborator: document writes and commits against
// one core. Implementations must be safe for concurrent use.
type Client interface {
	// Add writes one document to the index.
	Add(ctx context.Context, doc InputDocument) (*UpdateResponse, error)

	// AddWithin writes one document and instructs the index to commit it
	// on its own within the given duration.
	AddWithin(ctx context.Context, doc InputDocument, within time.Duration) (*UpdateResponse, error)

	// Commit makes previously added documents visible to queries.
	Commit(ctx context.Context) (*UpdateResponse, error)

	// Close releases the client's network resources.
	Close() error
}

// HTTPClient talks JSON to a Solr core's update handler.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the core at baseURL
// (e.g. http://localhost:8983/solr/documents).
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *HTTPClient) Add(ctx context.Context, doc InputDocument) (*UpdateResponse, error) {
	return c.update(ctx, map[string]any{
		"add": map[string]any{"doc": doc},
	})
}

func (c *HTTPClient) AddWithin(ctx context.Context, doc InputDocument, within time.Duration) (*UpdateResponse, error) {
	return c.update(ctx, map[string]any{
		"add": map[string]any{
			"doc":          doc,
			"commitWithin": within.Milliseconds(),
		},
	})
}

func (c *HTTPClient) Commit(ctx context.Context) (*UpdateResponse, error) {
	return c.update(ctx, map[string]any{
		"commit": map[string]any{},
	})
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) update(ctx context.Context, payload any) (*UpdateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var apiResp struct {
		ResponseHeader struct {
			Status int `json:"status"`
			QTime  int `json:"QTime"`
		} `json:"responseHeader"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &UpdateResponse{
		Status:  apiResp.ResponseHeader.Status,
		QTime:   apiResp.ResponseHeader.QTime,
		Elapsed: time.Since(start),
	}, nil
}
