package models

import (
	"time"

	"github.com/google/uuid"
)

// Complaint represents a user-submitted grievance together with the
// triage output that was computed when it was filed
type Complaint struct {
	ID                  uuid.UUID           `json:"id"`
	UserID              uuid.UUID           `json:"user_id"`
	ComplaintText       string              `json:"complaint_text"`
	State               string              `json:"state"`
	City                string              `json:"city"`
	DateOfIncident      time.Time           `json:"date_of_incident"`
	PredictedUrgency    string              `json:"predicted_urgency"`
	PredictedCategory   string              `json:"predicted_category"`
	RecommendedSections RecommendedSections `json:"recommended_sections"`
	CreatedAt           time.Time           `json:"created_at"`
}
