package repository

import (
	"context"
	"fmt"

	"lexaid-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ComplaintRepository handles database operations for complaints
type ComplaintRepository struct {
	db *pgxpool.Pool
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create creates a new complaint record
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			user_id, complaint_text, state, city, date_of_incident,
			predicted_urgency, predicted_category, recommended_sections
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		complaint.UserID,
		complaint.ComplaintText,
		complaint.State,
		complaint.City,
		complaint.DateOfIncident,
		complaint.PredictedUrgency,
		complaint.PredictedCategory,
		complaint.RecommendedSections,
	).Scan(&complaint.ID, &complaint.CreatedAt)

	return err
}

// GetByID retrieves a complaint by ID
func (r *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	complaint := &models.Complaint{}
	query := `
		SELECT id, user_id, complaint_text, state, city, date_of_incident,
		       predicted_urgency, predicted_category, recommended_sections, created_at
		FROM complaints
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.UserID,
		&complaint.ComplaintText,
		&complaint.State,
		&complaint.City,
		&complaint.DateOfIncident,
		&complaint.PredictedUrgency,
		&complaint.PredictedCategory,
		&complaint.RecommendedSections,
		&complaint.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return complaint, nil
}

// ListByUserID retrieves a user's complaint history, newest first
func (r *ComplaintRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Complaint, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, user_id, complaint_text, state, city, date_of_incident,
		       predicted_urgency, predicted_category, recommended_sections, created_at
		FROM complaints
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []*models.Complaint
	for rows.Next() {
		complaint := &models.Complaint{}
		err := rows.Scan(
			&complaint.ID,
			&complaint.UserID,
			&complaint.ComplaintText,
			&complaint.State,
			&complaint.City,
			&complaint.DateOfIncident,
			&complaint.PredictedUrgency,
			&complaint.PredictedCategory,
			&complaint.RecommendedSections,
			&complaint.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, complaint)
	}

	return complaints, rows.Err()
}
