package memory

import (
	"context"
	"strings"
	"testing"
)

func TestInMemoryArchiveRoundTrip(t *testing.T) {
	a := NewInMemoryArchive()
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		err := a.Save(ctx, Record{SessionID: "s1", Kind: RecordKindMessage, Role: "user", Content: content})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := a.History(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("History len = %d, want 2", len(got))
	}
	if got[0].Content != "second" || got[1].Content != "third" {
		t.Fatalf("History = %v, want last two in order", got)
	}
	if got[0].ID == "" {
		t.Fatalf("ID not assigned on save")
	}
}

func TestInMemoryArchiveUnknownSession(t *testing.T) {
	a := NewInMemoryArchive()
	got, err := a.History(context.Background(), "nope", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if got != nil {
		t.Fatalf("History = %v, want nil", got)
	}
}

func TestArchiveSaveRedactsPII(t *testing.T) {
	a := NewInMemoryArchive()
	ctx := context.Background()
	err := a.Save(ctx, Record{SessionID: "s1", Kind: RecordKindMessage, Role: "user", Content: "reach me at sam@example.com"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := a.History(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if !strings.Contains(got[0].Content, "[REDACTED_EMAIL]") {
		t.Fatalf("Content = %q, want redacted email", got[0].Content)
	}
	if !got[0].PIIRedacted {
		t.Fatalf("PIIRedacted = false, want true")
	}
}
