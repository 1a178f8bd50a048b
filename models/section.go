package models

import (
	"github.com/google/uuid"
)

// StatuteSection represents one IPC section from the reference dataset.
// RowIndex is the section's position in the prebuilt similarity index;
// cmd/build-index regenerates embeddings and row order together.
type StatuteSection struct {
	ID                uuid.UUID `json:"id"`
	RowIndex          int       `json:"row_index"`
	SectionNumber     string    `json:"section_number"`
	Title             string    `json:"title"`
	ShortDescription  string    `json:"short_description"`
	MappedCategory    string    `json:"mapped_category"`
	Punishment        string    `json:"punishment"`
	BailabilityStatus string    `json:"bailability_status"`
	CourtJurisdiction string    `json:"court_jurisdiction"`
	FullLegalText     string    `json:"full_legal_text"`
}
