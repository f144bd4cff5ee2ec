// Package pinecone implements vector.Repository against a Pinecone serverless
// index over its REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avenhq/support-agent/internal/vector"
)

// Repository queries a single Pinecone index host.
type Repository struct {
	host   string // index host, e.g. "my-index-abc123.svc.us-east-1.pinecone.io"
	apiKey string
	client *http.Client
}

// New creates a Pinecone-backed repository for the given index host.
func New(host, apiKey string) (*Repository, error) {
	if host == "" {
		return nil, fmt.Errorf("pinecone index host is required")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Repository{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float32        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (r *Repository) Search(ctx context.Context, vec []float32, topK int) ([]vector.SearchResult, error) {
	data, err := json.Marshal(queryRequest{
		Vector:          vec,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+"/query", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pinecone query: %s: %s", resp.Status, body)
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	results := make([]vector.SearchResult, len(result.Matches))
	for i, m := range result.Matches {
		meta := make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
		results[i] = vector.SearchResult{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: meta,
		}
	}
	return results, nil
}

// Close is a no-op; the repository holds no persistent connection.
func (r *Repository) Close() error { return nil }

var _ vector.Repository = (*Repository)(nil)
