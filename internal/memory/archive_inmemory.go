package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryArchive is a simple in-process archive for local/dev use.
type InMemoryArchive struct {
	mu      sync.RWMutex
	records map[string][]Record
}

func NewInMemoryArchive() *InMemoryArchive {
	return &InMemoryArchive{records: make(map[string][]Record)}
}

func (a *InMemoryArchive) Save(_ context.Context, record Record) error {
	record = redactRecord(record)

	a.mu.Lock()
	defer a.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	a.records[record.SessionID] = append(a.records[record.SessionID], record)
	return nil
}

func (a *InMemoryArchive) History(_ context.Context, sessionID string, limit int) ([]Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	arr := a.records[sessionID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Record, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (a *InMemoryArchive) Close() error { return nil }
