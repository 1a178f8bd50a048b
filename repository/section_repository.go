package repository

import (
	"context"
	"fmt"

	"lexaid-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SectionRepository handles database operations for IPC sections
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListOrdered returns every section ordered by row_index. The returned
// slice position of each section equals its row_index once the index and
// reference data were built together; the registry verifies that.
func (r *SectionRepository) ListOrdered(ctx context.Context) ([]models.StatuteSection, error) {
	query := `
		SELECT id, row_index, section_number, title, short_description,
		       mapped_category, punishment, bailability_status,
		       court_jurisdiction, full_legal_text
		FROM ipc_sections
		ORDER BY row_index`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ipc sections: %w", err)
	}
	defer rows.Close()

	var sections []models.StatuteSection
	for rows.Next() {
		var s models.StatuteSection
		err := rows.Scan(
			&s.ID,
			&s.RowIndex,
			&s.SectionNumber,
			&s.Title,
			&s.ShortDescription,
			&s.MappedCategory,
			&s.Punishment,
			&s.BailabilityStatus,
			&s.CourtJurisdiction,
			&s.FullLegalText,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ipc section: %w", err)
		}
		sections = append(sections, s)
	}

	return sections, rows.Err()
}

// ListEmbeddings returns all section embeddings ordered by row_index,
// as parallel slices of (row_index, vector)
func (r *SectionRepository) ListEmbeddings(ctx context.Context) ([]int, [][]float64, error) {
	query := `
		SELECT row_index, embedding::text
		FROM section_embeddings
		ORDER BY row_index`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query section embeddings: %w", err)
	}
	defer rows.Close()

	var rowIndexes []int
	var vectors [][]float64
	for rows.Next() {
		var rowIndex int
		var text string
		if err := rows.Scan(&rowIndex, &text); err != nil {
			return nil, nil, fmt.Errorf("failed to scan section embedding: %w", err)
		}
		vec, err := parseVector(text)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse embedding for row %d: %w", rowIndex, err)
		}
		rowIndexes = append(rowIndexes, rowIndex)
		vectors = append(vectors, vec)
	}

	return rowIndexes, vectors, rows.Err()
}

// List returns sections for the explorer, optionally filtered by mapped
// category and a free-text search term
func (r *SectionRepository) List(ctx context.Context, category, search string, limit, offset int) ([]models.StatuteSection, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, row_index, section_number, title, short_description,
		       mapped_category, punishment, bailability_status,
		       court_jurisdiction, full_legal_text
		FROM ipc_sections
		WHERE ($1 = '' OR mapped_category ILIKE $1)
		  AND ($2 = '' OR section_number ILIKE '%' || $2 || '%'
		       OR title ILIKE '%' || $2 || '%'
		       OR short_description ILIKE '%' || $2 || '%'
		       OR mapped_category ILIKE '%' || $2 || '%')
		ORDER BY row_index
		LIMIT $3 OFFSET $4`

	if category == "all" {
		category = ""
	}

	rows, err := r.db.Query(ctx, query, category, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ipc sections: %w", err)
	}
	defer rows.Close()

	var sections []models.StatuteSection
	for rows.Next() {
		var s models.StatuteSection
		err := rows.Scan(
			&s.ID,
			&s.RowIndex,
			&s.SectionNumber,
			&s.Title,
			&s.ShortDescription,
			&s.MappedCategory,
			&s.Punishment,
			&s.BailabilityStatus,
			&s.CourtJurisdiction,
			&s.FullLegalText,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ipc section: %w", err)
		}
		sections = append(sections, s)
	}

	return sections, rows.Err()
}
