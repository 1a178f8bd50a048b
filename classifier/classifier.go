package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// artifact is the JSON schema of a serialized model exported by the
// training pipeline: one weight row and one bias per label, indexed by a
// shared token vocabulary.
type artifact struct {
	Labels     []string       `json:"labels"`
	Vocabulary map[string]int `json:"vocabulary"`
	Weights    [][]float64    `json:"weights"`
	Bias       []float64      `json:"bias"`
}

// LinearClassifier predicts a single label for a text using a linear
// bag-of-words model. It is read-only after Load and safe for concurrent
// use.
type LinearClassifier struct {
	labels     []string
	vocabulary map[string]int
	weights    [][]float64
	bias       []float64
}

var ErrInvalidArtifact = errors.New("invalid classifier artifact")

// Load reads a classifier artifact from disk and validates its shape
func Load(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	if len(a.Labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrInvalidArtifact)
	}
	if len(a.Weights) != len(a.Labels) || len(a.Bias) != len(a.Labels) {
		return nil, fmt.Errorf("%w: weights/bias row count does not match labels", ErrInvalidArtifact)
	}
	for i, row := range a.Weights {
		if len(row) != len(a.Vocabulary) {
			return nil, fmt.Errorf("%w: weight row %d has %d columns, vocabulary has %d entries",
				ErrInvalidArtifact, i, len(row), len(a.Vocabulary))
		}
	}
	for token, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.Vocabulary) {
			return nil, fmt.Errorf("%w: vocabulary index out of range for token %q", ErrInvalidArtifact, token)
		}
	}

	return &LinearClassifier{
		labels:     a.Labels,
		vocabulary: a.Vocabulary,
		weights:    a.Weights,
		bias:       a.Bias,
	}, nil
}

// Labels returns the label set the classifier predicts over
func (c *LinearClassifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Predict scores the text against every label and returns the best one.
// Tokens outside the vocabulary contribute nothing; ties resolve to the
// earlier label so predictions are deterministic.
func (c *LinearClassifier) Predict(text string) (string, error) {
	counts := make(map[int]float64)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if idx, ok := c.vocabulary[token]; ok {
			counts[idx]++
		}
	}

	best := 0
	bestScore := c.score(0, counts)
	for label := 1; label < len(c.labels); label++ {
		if s := c.score(label, counts); s > bestScore {
			best = label
			bestScore = s
		}
	}
	return c.labels[best], nil
}

func (c *LinearClassifier) score(label int, counts map[int]float64) float64 {
	s := c.bias[label]
	for idx, n := range counts {
		s += n * c.weights[label][idx]
	}
	return s
}
