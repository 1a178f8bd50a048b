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

// Encoder produces a fixed-length embedding vector for a text
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

const (
	embeddingAPI       = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	embeddingDimension = 768
	maxRetries         = 3
	initialBackoff     = time.Second
)

var ErrEmbeddingFailed = errors.New("failed to generate embedding")

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
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// GeminiEncoder calls the Gemini embedding API. Embeddings are L2
// normalized before being returned, matching what the offline indexer
// stores.
type GeminiEncoder struct {
	apiKey   string
	taskType string
	client   *http.Client
}

// NewGeminiEncoder creates an encoder for the given task type
// ("RETRIEVAL_QUERY" at request time, "RETRIEVAL_DOCUMENT" when indexing)
func NewGeminiEncoder(apiKey, taskType string) *GeminiEncoder {
	return &GeminiEncoder{
		apiKey:   apiKey,
		taskType: taskType,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed generates a 768-dimension embedding for the text
func (e *GeminiEncoder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             e.taskType,
		OutputDimensionality: embeddingDimension,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			embedding := apiResp.Embedding.Values
			// Normalize embedding
			norm := 0.0
			for _, v := range embedding {
				norm += v * v
			}
			norm = math.Sqrt(norm)
			if norm > 0 {
				for i := range embedding {
					embedding[i] /= norm
				}
			}

			return embedding, nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}
