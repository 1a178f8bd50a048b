package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lexaid-backend/models"
	"lexaid-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSectionSource struct {
	sections []models.StatuteSection
	vectors  [][]float64
}

func (s *fixedSectionSource) ListOrdered(ctx context.Context) ([]models.StatuteSection, error) {
	return s.sections, nil
}

func (s *fixedSectionSource) ListEmbeddings(ctx context.Context) ([]int, [][]float64, error) {
	rowIndexes := make([]int, len(s.vectors))
	for i := range rowIndexes {
		rowIndexes[i] = i
	}
	return rowIndexes, s.vectors, nil
}

type fixedEncoder struct {
	embedding []float64
}

func (e *fixedEncoder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.embedding, nil
}

func writeClassifierArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	artifact := `{
		"labels": ["low", "high"],
		"vocabulary": {"urgent": 0},
		"weights": [[0.0], [2.0]],
		"bias": [0.0, 0.0]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "urgency_classifier.json"), []byte(artifact), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "category_classifier.json"), []byte(artifact), 0644))
	return dir
}

func newAnalyzeRouter(t *testing.T, modelsDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	source := &fixedSectionSource{
		sections: []models.StatuteSection{
			{RowIndex: 0, SectionNumber: "378", Title: "Theft", ShortDescription: "Dishonest taking of movable property"},
			{RowIndex: 1, SectionNumber: "420", Title: "Cheating", ShortDescription: "Cheating and dishonestly inducing delivery"},
		},
		vectors: [][]float64{
			{0.1, 0},
			{3, 0},
		},
	}

	registry := service.NewModelRegistry(
		service.RegistryWithModelsDir(modelsDir),
		service.RegistryWithSectionSource(source),
		service.RegistryWithEncoder(&fixedEncoder{embedding: []float64{0, 0}}),
	)
	triageService := service.NewTriageService(service.TriageWithRegistry(registry))
	handler := NewComplaintHandler(triageService, nil)

	r := gin.New()
	r.POST("/api/complaints/analyze", handler.AnalyzeComplaint)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeComplaintEndpoint(t *testing.T) {
	r := newAnalyzeRouter(t, writeClassifierArtifacts(t))

	w := postJSON(t, r, "/api/complaints/analyze", `{"complaint_text": "My bike was taken, urgent!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			PredictedUrgency    string                     `json:"predicted_urgency"`
			PredictedCategory   string                     `json:"predicted_category"`
			RecommendedSections models.RecommendedSections `json:"recommended_sections"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "high", resp.Data.PredictedUrgency)
	require.NotEmpty(t, resp.Data.RecommendedSections)
	assert.Equal(t, "378", resp.Data.RecommendedSections[0].SectionNumber)
}

func TestAnalyzeComplaintEndpointEmptyText(t *testing.T) {
	r := newAnalyzeRouter(t, writeClassifierArtifacts(t))

	w := postJSON(t, r, "/api/complaints/analyze", `{"complaint_text": "   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "EMPTY_COMPLAINT", resp.Error.Code)
}

func TestAnalyzeComplaintEndpointModelsUnavailable(t *testing.T) {
	// Empty models directory: the registry cannot load its artifacts
	r := newAnalyzeRouter(t, t.TempDir())

	w := postJSON(t, r, "/api/complaints/analyze", `{"complaint_text": "my bike was taken"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "MODELS_UNAVAILABLE")
}
