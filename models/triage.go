package models

import (
	"database/sql/driver"
	"encoding/json"
)

// RecommendedSection is the statute subset surfaced to the user after triage
type RecommendedSection struct {
	SectionNumber    string `json:"section_number"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
}

// RecommendedSections is an ordered list of triage recommendations
type RecommendedSections []RecommendedSection

// Value implements driver.Valuer for JSONB
func (r RecommendedSections) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *RecommendedSections) Scan(value interface{}) error {
	if value == nil {
		*r = RecommendedSections{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*r = RecommendedSections{}
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// TriageResult is the structured output of complaint analysis
type TriageResult struct {
	PredictedUrgency    string              `json:"predicted_urgency"`
	PredictedCategory   string              `json:"predicted_category"`
	RecommendedSections RecommendedSections `json:"recommended_sections"`
}
