package repository

import (
	"context"
	"errors"
	"fmt"

	"lexaid-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles database operations for chat sessions.
// Sessions are keyed per session id, so calls on different sessions
// never contend. Concurrent saves of the same session are
// last-write-wins.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the stored session, or an empty transcript when the
// session has no history yet
func (r *SessionRepository) Get(ctx context.Context, sessionID uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	query := `
		SELECT session_id, turns, updated_at
		FROM chat_sessions
		WHERE session_id = $1`

	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.Turns,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.ChatSession{
			SessionID: sessionID,
			Turns:     models.ConversationTurns{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat session: %w", err)
	}

	return session, nil
}

// Save upserts the full transcript for a session
func (r *SessionRepository) Save(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (session_id, turns, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET turns = EXCLUDED.turns, updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, session.SessionID, session.Turns)
	if err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	return nil
}
