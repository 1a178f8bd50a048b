package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexaid-backend/models"
)

// TriageService orchestrates the complaint analysis pipeline:
// classification, semantic retrieval, and confidence filtering.
type TriageService struct {
	registry *ModelRegistry
}

// TriageServiceOption is a functional option for TriageService
type TriageServiceOption func(*TriageService)

// TriageWithRegistry sets the model registry
func TriageWithRegistry(registry *ModelRegistry) TriageServiceOption {
	return func(s *TriageService) {
		s.registry = registry
	}
}

// NewTriageService creates a new triage service
func NewTriageService(opts ...TriageServiceOption) *TriageService {
	s := &TriageService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	// candidateNeighbors is how many nearest sections are fetched before
	// the confidence filter runs.
	candidateNeighbors = 10

	// confidenceThreshold is the minimum similarity score a candidate
	// must reach to be recommended.
	confidenceThreshold = 0.60

	// FallbackWidth is how many of the nearest candidates are returned
	// when nothing clears the confidence threshold.
	FallbackWidth = 5
)

var (
	ErrEmptyComplaint = errors.New("complaint text is required")
	ErrAnalysisFailed = errors.New("complaint analysis failed")
)

// AnalyzeRequest represents a request to analyze a complaint
type AnalyzeRequest struct {
	ComplaintText string
}

// AnalyzeResult represents the result of complaint analysis
type AnalyzeResult struct {
	Result *models.TriageResult
}

// similarityScore maps a non-negative distance to a score in (0, 1],
// larger meaning more similar
func similarityScore(distance float64) float64 {
	return 1 / (1 + distance)
}

// Analyze runs the full triage pipeline for one complaint
func (s *TriageService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if s.registry == nil {
		return nil, errors.New("model registry not set")
	}
	if strings.TrimSpace(req.ComplaintText) == "" {
		return nil, ErrEmptyComplaint
	}

	bundle, err := s.registry.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeText(req.ComplaintText)
	if normalized == "" {
		return nil, ErrEmptyComplaint
	}

	urgency, err := bundle.Urgency.Predict(normalized)
	if err != nil {
		return nil, analysisFailed("urgency classification", err)
	}

	category, err := bundle.Category.Predict(normalized)
	if err != nil {
		return nil, analysisFailed("category classification", err)
	}

	embedding, err := bundle.Encoder.Embed(ctx, normalized)
	if err != nil {
		return nil, analysisFailed("complaint embedding", err)
	}

	distances, rows, err := bundle.Index.Search(embedding, candidateNeighbors)
	if err != nil {
		return nil, analysisFailed("similarity search", err)
	}

	// Confidence filter: keep candidates scoring >= the threshold,
	// preserving ascending-distance order
	kept := make([]int, 0, len(rows))
	for i, row := range rows {
		if similarityScore(distances[i]) >= confidenceThreshold {
			kept = append(kept, row)
		}
	}

	// Fallback: when nothing clears the bar, return the nearest few
	// rather than an empty recommendation
	if len(kept) == 0 {
		width := FallbackWidth
		if width > len(rows) {
			width = len(rows)
		}
		kept = rows[:width]
	}

	recommendations := make(models.RecommendedSections, 0, len(kept))
	for _, row := range kept {
		if row < 0 || row >= len(bundle.Sections) {
			return nil, fmt.Errorf("%w: search returned row %d, lookup table has %d rows",
				ErrIndexInconsistency, row, len(bundle.Sections))
		}
		section := bundle.Sections[row]
		recommendations = append(recommendations, models.RecommendedSection{
			SectionNumber:    section.SectionNumber,
			Title:            section.Title,
			ShortDescription: section.ShortDescription,
		})
	}

	return &AnalyzeResult{
		Result: &models.TriageResult{
			PredictedUrgency:    urgency,
			PredictedCategory:   category,
			RecommendedSections: recommendations,
		},
	}, nil
}

func analysisFailed(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrAnalysisFailed, stage, err)
}
