package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/normanking/jarvis/internal/fuzzy"
)

// Message is one stored exchange line.
type Message struct {
	ID             string
	ConversationID string
	UserID         string
	Role           string // "user" or "jarvis"
	Text           string
	CreatedAt      time.Time
}

// TranscriptStore persists and reloads conversation exchanges. Only
// the dispatcher appends; the bridge never writes.
type TranscriptStore interface {
	Append(ctx context.Context, conversationID, userID, role, text string) error
	Load(ctx context.Context, userID string) ([]Message, error)
}

// SQLiteTranscripts stores transcripts in the shared fact database.
type SQLiteTranscripts struct {
	db *sql.DB
}

// NewSQLiteTranscripts wraps an open database handle.
func NewSQLiteTranscripts(db *sql.DB) *SQLiteTranscripts {
	return &SQLiteTranscripts{db: db}
}

func (s *SQLiteTranscripts) Append(ctx context.Context, conversationID, userID, role, text string) error {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, user_id, role, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), conversationID, userID, role, text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *SQLiteTranscripts) Load(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, role, text, created_at
		FROM messages WHERE user_id = ?
		ORDER BY created_at ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InMemoryTranscripts is a TranscriptStore for tests and guest runs.
type InMemoryTranscripts struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewInMemoryTranscripts creates an empty transcript store.
func NewInMemoryTranscripts() *InMemoryTranscripts {
	return &InMemoryTranscripts{messages: make(map[string][]Message)}
}

func (s *InMemoryTranscripts) Append(_ context.Context, conversationID, userID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[userID] = append(s.messages[userID], Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	})
	return nil
}

func (s *InMemoryTranscripts) Load(_ context.Context, userID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages[userID]...), nil
}

// badReplies are stored assistant lines that must never be recalled.
var badReplies = []string{
	"something went wrong",
	"i encountered an issue accessing my ai intelligence",
}

func isBadReply(text string) bool {
	t := strings.TrimSpace(strings.ToLower(text))
	for _, bad := range badReplies {
		if strings.Contains(t, bad) {
			return true
		}
	}
	return false
}

// RecallThreshold is the minimum token-set similarity for a past user
// message to count as a repeat of the current question.
const RecallThreshold = 80

// FindPastAnswer scans stored exchanges newest-first for a user
// message similar to userText and returns the assistant reply that
// followed it, with the match score. Known-bad stored replies are
// skipped. Returns ("", 0) when nothing clears minScore.
func FindPastAnswer(messages []Message, userText string, minScore int) (string, int) {
	userText = strings.ToLower(userText)

	bestAnswer := ""
	bestScore := 0
	for i := len(messages) - 2; i >= 0; i-- {
		u, j := messages[i], messages[i+1]
		if u.Role != "user" || j.Role != "jarvis" {
			continue
		}
		if isBadReply(j.Text) {
			continue
		}

		score := fuzzy.TokenSetRatio(userText, strings.ToLower(u.Text))
		if score > bestScore {
			bestScore = score
			bestAnswer = j.Text
		}
	}

	if bestScore >= minScore {
		return bestAnswer, bestScore
	}
	return "", 0
}
