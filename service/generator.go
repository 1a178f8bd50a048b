package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Generator produces an answer text for a fully assembled prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// GeminiGenerator is the Gemini-backed generation backend
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator bound to one Gemini model
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{client: client, model: model}
}

// Generate invokes the model and concatenates all returned text parts
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("generation returned no candidates")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}

	result := builder.String()
	if result == "" {
		return "", fmt.Errorf("generation returned empty content")
	}
	return result, nil
}
