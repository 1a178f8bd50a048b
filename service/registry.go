package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"lexaid-backend/classifier"
	"lexaid-backend/models"
	"lexaid-backend/vectorindex"
)

// Classifier predicts a single label for a text. Any model satisfying
// this signature can be substituted.
type Classifier interface {
	Predict(text string) (string, error)
}

// SectionSource is the read side of the durable statute reference data
type SectionSource interface {
	ListOrdered(ctx context.Context) ([]models.StatuteSection, error)
	ListEmbeddings(ctx context.Context) ([]int, [][]float64, error)
}

var (
	ErrModelsUnavailable  = errors.New("inference models could not be loaded")
	ErrIndexInconsistency = errors.New("section lookup table does not match similarity index")
)

// ModelBundle holds every inference artifact the triage pipeline needs.
// It is populated exactly once per process under the registry lock and
// treated as read-only afterwards; Sections[i] is the payload for
// index row i.
type ModelBundle struct {
	Urgency  Classifier
	Category Classifier
	Index    *vectorindex.FlatIndex
	Sections []models.StatuteSection
	Encoder  Encoder
}

// ModelRegistry lazily loads and caches the model bundle. Concurrent
// first calls serialize on the mutex so only one load sequence runs at
// a time, and no caller ever observes a half-populated bundle. A failed
// load leaves the registry unset, so every subsequent request retries
// the full load.
type ModelRegistry struct {
	mu     sync.Mutex
	bundle atomic.Pointer[ModelBundle]

	modelsDir   string
	sectionRepo SectionSource
	encoder     Encoder
}

// RegistryOption is a functional option for ModelRegistry
type RegistryOption func(*ModelRegistry)

// RegistryWithModelsDir sets the directory classifier artifacts load from
func RegistryWithModelsDir(dir string) RegistryOption {
	return func(r *ModelRegistry) {
		r.modelsDir = dir
	}
}

// RegistryWithSectionSource sets the statute reference data source
func RegistryWithSectionSource(repo SectionSource) RegistryOption {
	return func(r *ModelRegistry) {
		r.sectionRepo = repo
	}
}

// RegistryWithEncoder sets the text encoder
func RegistryWithEncoder(encoder Encoder) RegistryOption {
	return func(r *ModelRegistry) {
		r.encoder = encoder
	}
}

// NewModelRegistry creates a new model registry
func NewModelRegistry(opts ...RegistryOption) *ModelRegistry {
	r := &ModelRegistry{modelsDir: "./saved_models"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the loaded model bundle, loading it on first use.
// Index inconsistencies are fatal and surface as ErrIndexInconsistency;
// every other load failure surfaces as ErrModelsUnavailable and is safe
// to retry with a new request.
func (r *ModelRegistry) Acquire(ctx context.Context) (*ModelBundle, error) {
	if b := r.bundle.Load(); b != nil {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b := r.bundle.Load(); b != nil {
		return b, nil
	}

	b, err := r.load(ctx)
	if err != nil {
		if errors.Is(err, ErrIndexInconsistency) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelsUnavailable, err)
	}

	r.bundle.Store(b)
	return b, nil
}

// load builds a complete bundle or fails without publishing anything
func (r *ModelRegistry) load(ctx context.Context) (*ModelBundle, error) {
	if r.sectionRepo == nil {
		return nil, errors.New("section source not set")
	}
	if r.encoder == nil {
		return nil, errors.New("encoder not set")
	}

	urgency, err := classifier.Load(filepath.Join(r.modelsDir, "urgency_classifier.json"))
	if err != nil {
		return nil, fmt.Errorf("urgency classifier: %w", err)
	}

	category, err := classifier.Load(filepath.Join(r.modelsDir, "category_classifier.json"))
	if err != nil {
		return nil, fmt.Errorf("category classifier: %w", err)
	}

	sections, err := r.sectionRepo.ListOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("section lookup table: %w", err)
	}
	if len(sections) == 0 {
		return nil, errors.New("no ipc sections loaded; run cmd/import-sections first")
	}

	rowIndexes, vectors, err := r.sectionRepo.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("section embeddings: %w", err)
	}

	if len(vectors) != len(sections) {
		return nil, fmt.Errorf("%w: %d sections, %d embeddings",
			ErrIndexInconsistency, len(sections), len(vectors))
	}
	for i := range sections {
		if sections[i].RowIndex != i || rowIndexes[i] != i {
			return nil, fmt.Errorf("%w: row %d is out of order", ErrIndexInconsistency, i)
		}
	}

	index, err := vectorindex.New(len(vectors[0]))
	if err != nil {
		return nil, fmt.Errorf("similarity index: %w", err)
	}
	for i, vec := range vectors {
		if err := index.Add(vec); err != nil {
			return nil, fmt.Errorf("%w: embedding row %d: %v", ErrIndexInconsistency, i, err)
		}
	}

	return &ModelBundle{
		Urgency:  urgency,
		Category: category,
		Index:    index,
		Sections: sections,
		Encoder:  r.encoder,
	}, nil
}
