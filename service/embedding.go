package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

const (
	embeddingAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	batchEmbeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"
	embeddingModel    = "models/gemini-embedding-001"
	embeddingDims     = 768

	maxRetries     = 3
	initialBackoff = time.Second
)

// ErrEmbeddingUnavailable is returned when the embedding service cannot be
// reached after exhausting retries. Callers on optional enrichment paths
// degrade to empty context; the ingestion path propagates it.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Embedder converts text into fixed-length vectors for similarity search.
type Embedder interface {
	// Embed embeds a single retrieval query.
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbedDocuments embeds an ordered batch of corpus texts, returning one
	// vector per input in the same order. Partial failure fails the batch.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingClient calls the Gemini embedding API over HTTP with bounded
// retries. Safe for concurrent use.
type EmbeddingClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewEmbeddingClient creates a new embedding client.
func NewEmbeddingClient(apiKey string) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingValues `json:"embedding"`
}

// EmbeddingValues contains the embedding vector
type EmbeddingValues struct {
	Values []float64 `json:"values"`
}

// BatchEmbeddingRequest is the batch form of EmbeddingRequest
type BatchEmbeddingRequest struct {
	Requests []EmbeddingRequest `json:"requests"`
}

// BatchEmbeddingResponse holds one embedding per request, in request order
type BatchEmbeddingResponse struct {
	Embeddings []EmbeddingValues `json:"embeddings"`
}

// Embed embeds a query string, retrying transient failures with exponential
// backoff. It never returns a degraded or zero vector: after exhausting
// retries it fails with ErrEmbeddingUnavailable.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrEmbeddingUnavailable)
	}

	reqBody := EmbeddingRequest{
		Model: embeddingModel,
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: embeddingDims,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			err := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if err != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			return normalize(apiResp.Embedding.Values), nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("embedding API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("%w: API error %d after %d attempts", ErrEmbeddingUnavailable, resp.StatusCode, maxRetries)
		}
	}

	return nil, ErrEmbeddingUnavailable
}

// EmbedDocuments embeds an ordered batch of texts for ingestion. The response
// must contain exactly one vector per input; anything else fails the batch.
func (c *EmbeddingClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrEmbeddingUnavailable)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]EmbeddingRequest, len(texts))
	for i, text := range texts {
		requests[i] = EmbeddingRequest{
			Model: embeddingModel,
			Content: ContentInput{
				Parts: []PartInput{{Text: text}},
			},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: embeddingDims,
		}
	}

	jsonData, err := json.Marshal(BatchEmbeddingRequest{Requests: requests})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", batchEmbeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("embedding API error: %d", resp.StatusCode)
			}
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("%w: API error %d after %d attempts", ErrEmbeddingUnavailable, resp.StatusCode, maxRetries)
			}
			continue
		}

		var apiResp BatchEmbeddingResponse
		err = json.NewDecoder(resp.Body).Decode(&apiResp)
		resp.Body.Close()
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to decode batch response: %w", err)
			}
			continue
		}

		if len(apiResp.Embeddings) != len(texts) {
			return nil, fmt.Errorf("batch embedding count mismatch: sent %d, got %d", len(texts), len(apiResp.Embeddings))
		}

		vectors := make([][]float64, len(apiResp.Embeddings))
		for i, emb := range apiResp.Embeddings {
			if len(emb.Values) == 0 {
				return nil, fmt.Errorf("batch embedding %d is empty", i)
			}
			vectors[i] = normalize(emb.Values)
		}
		return vectors, nil
	}

	return nil, ErrEmbeddingUnavailable
}

// normalize scales a vector to unit length so cosine similarity reduces to a
// dot product in the store.
func normalize(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
