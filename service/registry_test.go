package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"lexaid-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSectionSource serves a fixed section table and embedding set
type stubSectionSource struct {
	sections   []models.StatuteSection
	rowIndexes []int
	vectors    [][]float64

	listErr   error
	listCalls atomic.Int32
}

func (s *stubSectionSource) ListOrdered(ctx context.Context) ([]models.StatuteSection, error) {
	s.listCalls.Add(1)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.sections, nil
}

func (s *stubSectionSource) ListEmbeddings(ctx context.Context) ([]int, [][]float64, error) {
	return s.rowIndexes, s.vectors, nil
}

// stubEncoder returns a fixed embedding and records the last input
type stubEncoder struct {
	embedding []float64
	err       error
	lastText  string
}

func (e *stubEncoder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.lastText = text
	if e.err != nil {
		return nil, e.err
	}
	return e.embedding, nil
}

// writeModelsDir lays out a models directory with one urgency and one
// category artifact whose predictions are controlled by single tokens.
func writeModelsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	urgency := `{
		"labels": ["low", "high"],
		"vocabulary": {"urgent": 0},
		"weights": [[0.0], [2.0]],
		"bias": [0.0, 0.0]
	}`
	category := `{
		"labels": ["general", "property"],
		"vocabulary": {"stolen": 0},
		"weights": [[0.0], [2.0]],
		"bias": [0.0, 0.0]
	}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "urgency_classifier.json"), []byte(urgency), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "category_classifier.json"), []byte(category), 0644))
	return dir
}

// makeSectionFixture builds an aligned section table and embedding set
func makeSectionFixture(vectors [][]float64) *stubSectionSource {
	src := &stubSectionSource{vectors: vectors}
	for i := range vectors {
		src.sections = append(src.sections, models.StatuteSection{
			RowIndex:         i,
			SectionNumber:    fmt.Sprintf("%d", 100+i),
			Title:            fmt.Sprintf("Offence %d", i),
			ShortDescription: fmt.Sprintf("Description of offence %d", i),
		})
		src.rowIndexes = append(src.rowIndexes, i)
	}
	return src
}

func defaultVectors() [][]float64 {
	return [][]float64{
		{0.5, 0},
		{0.7, 0},
		{1, 0},
		{2, 0},
	}
}

func newTestRegistry(t *testing.T, src SectionSource, enc Encoder) *ModelRegistry {
	t.Helper()
	return NewModelRegistry(
		RegistryWithModelsDir(writeModelsDir(t)),
		RegistryWithSectionSource(src),
		RegistryWithEncoder(enc),
	)
}

func TestAcquireLoadsBundle(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	bundle, err := registry.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, bundle.Index.Len())
	assert.Len(t, bundle.Sections, 4)
	assert.NotNil(t, bundle.Urgency)
	assert.NotNil(t, bundle.Category)
}

func TestAcquireLoadsOnceUnderConcurrency(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	const callers = 16
	bundles := make([]*ModelBundle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := registry.Acquire(context.Background())
			assert.NoError(t, err)
			bundles[i] = b
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.listCalls.Load(), "the load sequence must run exactly once")
	for i := 1; i < callers; i++ {
		assert.Same(t, bundles[0], bundles[i], "every caller sees the same bundle")
	}
}

func TestAcquireRetriesAfterFailure(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	src.listErr = errors.New("database down")
	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	_, err := registry.Acquire(context.Background())
	require.ErrorIs(t, err, ErrModelsUnavailable)

	// Recovery: the next request runs the full load again
	src.listErr = nil
	bundle, err := registry.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, bundle.Index.Len())
	assert.Equal(t, int32(2), src.listCalls.Load())
}

func TestAcquireMissingArtifacts(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	registry := NewModelRegistry(
		RegistryWithModelsDir(t.TempDir()),
		RegistryWithSectionSource(src),
		RegistryWithEncoder(&stubEncoder{embedding: []float64{0, 0}}),
	)

	_, err := registry.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrModelsUnavailable)
}

func TestAcquireEmptySectionTable(t *testing.T) {
	src := &stubSectionSource{}
	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	_, err := registry.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrModelsUnavailable)
}

func TestAcquireCountMismatchIsFatal(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	src.vectors = src.vectors[:3] // one embedding short

	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	_, err := registry.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrIndexInconsistency)
	assert.NotErrorIs(t, err, ErrModelsUnavailable)
}

func TestAcquireRowOrderViolationIsFatal(t *testing.T) {
	src := makeSectionFixture(defaultVectors())
	src.sections[1].RowIndex = 5

	registry := newTestRegistry(t, src, &stubEncoder{embedding: []float64{0, 0}})

	_, err := registry.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrIndexInconsistency)
}
