package memory

import (
	"context"
	"strings"
	"time"

	"github.com/solace-labs/solace/internal/policy"
)

// Record is one archived transcript entry: a completed message or a
// distilled memory item, kept for later review.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Kind        string    `json:"kind"` // message|memory_item
	Role        string    `json:"role"` // user|assistant|operator, empty for memory items
	Content     string    `json:"content"`
	Category    string    `json:"category,omitempty"`
	Escalated   bool      `json:"escalated"`
	PIIRedacted bool      `json:"pii_redacted"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	RecordKindMessage    = "message"
	RecordKindMemoryItem = "memory_item"
)

// Archive persists completed transcript records across the session's life.
// Working memory stays session-lived; the archive is review history only.
type Archive interface {
	Save(ctx context.Context, record Record) error
	History(ctx context.Context, sessionID string, limit int) ([]Record, error)
	Close() error
}

// NewArchive creates a postgres-backed archive when configured, otherwise
// in-memory.
func NewArchive(ctx context.Context, databaseURL string) (Archive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryArchive(), nil
	}
	return NewPostgresArchive(ctx, databaseURL)
}

// redactRecord masks PII in content before it leaves the session.
func redactRecord(record Record) Record {
	redacted, changed := policy.RedactPII(record.Content)
	record.Content = redacted
	record.PIIRedacted = record.PIIRedacted || changed
	return record
}
