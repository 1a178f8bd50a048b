package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one question/answer pair in a chat session
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ConversationTurns is an ordered chat transcript
type ConversationTurns []ConversationTurn

// Value implements driver.Valuer for JSONB
func (t ConversationTurns) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB
func (t *ConversationTurns) Scan(value interface{}) error {
	if value == nil {
		*t = ConversationTurns{}
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
		*t = ConversationTurns{}
		return nil
	}
	return json.Unmarshal(bytes, t)
}

// ChatSession is the stored transcript for one session identifier.
// Turns grow by append only; concurrent appends on the same session are
// last-write-wins (turns are naturally sequential from one client).
type ChatSession struct {
	SessionID uuid.UUID         `json:"session_id"`
	Turns     ConversationTurns `json:"turns"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ChatSource is a cited context chunk returned alongside an answer
type ChatSource struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}
