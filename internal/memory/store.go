package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solace-labs/solace/internal/analysis"
)

// Store is the session-scoped working memory consulted when composing
// replies. It is shared by reference between the live-analysis path and
// the response composer; the dialogue engine owns its lifetime.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// ShouldAdd reports whether no existing item of the given category already
// contains entityText, case-insensitively. Plain substring containment:
// "Ann" is considered covered by an existing "Anna" item. That looseness is
// intentional and long-standing; see DESIGN.md.
func (s *Store) ShouldAdd(entityText, category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shouldAddLocked(entityText, category)
}

func (s *Store) shouldAddLocked(entityText, category string) bool {
	needle := strings.ToLower(entityText)
	for _, item := range s.items {
		if item.Category != category {
			continue
		}
		if strings.Contains(strings.ToLower(item.Content), needle) {
			return false
		}
	}
	return true
}

// Insert appends all items, assigning IDs and dates where missing.
func (s *Store) Insert(items []Item) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Date.IsZero() {
			item.Date = now
		}
		s.items = append(s.items, item)
	}
}

// Items returns a snapshot in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// UpdateFromText extracts entities from text and inserts one item per new
// entity, applying the per-category containment dedup. When the text names
// both an event and at least one date, a single synthetic schedule item
// combining the two is inserted in addition to the per-entity items.
// Returns the newly inserted batch (possibly empty).
func (s *Store) UpdateFromText(text string) []Item {
	entities := analysis.Extract(text)

	s.mu.Lock()
	var batch []Item
	add := func(content, category string, importance float64) {
		batch = append(batch, Item{
			ID:         uuid.NewString(),
			Content:    content,
			Category:   category,
			Date:       time.Now().UTC(),
			Importance: importance,
		})
		s.items = append(s.items, batch[len(batch)-1])
	}

	for _, person := range entities.People {
		if !s.shouldAddLocked(person, CategoryPeople) {
			continue
		}
		add(fmt.Sprintf("%s is someone the user talks about", person), CategoryPeople, 0.8)
	}
	for _, event := range entities.Events {
		if !s.shouldAddLocked(event, CategoryEvents) {
			continue
		}
		add(fmt.Sprintf("Upcoming %s mentioned", event), CategoryEvents, 0.7)
	}
	for _, feeling := range entities.Feelings {
		if !s.shouldAddLocked(feeling, CategoryEmotions) {
			continue
		}
		add(fmt.Sprintf("Has been feeling %s", feeling), CategoryEmotions, 0.6)
	}
	for _, place := range entities.Locations {
		if !s.shouldAddLocked(place, CategoryPlaces) {
			continue
		}
		add(fmt.Sprintf("Spends time at %s", place), CategoryPlaces, 0.5)
	}
	if len(entities.Events) > 0 && len(entities.Dates) > 0 {
		combined := fmt.Sprintf("has %s on %s", entities.Events[0], entities.Dates[0])
		if s.shouldAddLocked(combined, CategorySchedule) {
			add(combined, CategorySchedule, 0.9)
		}
	}
	s.mu.Unlock()
	return batch
}

// RelevantTo returns stored items related to a submitted message: every
// item whose content contains a matched person or event substring, plus
// all emotion items when any feeling matched. Deduplicated by item ID,
// insertion order preserved, no further ranking.
func (s *Store) RelevantTo(text string) []Item {
	entities := analysis.Extract(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []Item
	for _, item := range s.items {
		if s.matchesEntities(item, entities) {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) matchesEntities(item Item, entities analysis.EntitySet) bool {
	content := strings.ToLower(item.Content)
	for _, person := range entities.People {
		if strings.Contains(content, strings.ToLower(person)) {
			return true
		}
	}
	for _, event := range entities.Events {
		if strings.Contains(content, strings.ToLower(event)) {
			return true
		}
	}
	if len(entities.Events) > 0 && item.Category == CategorySchedule {
		return true
	}
	if len(entities.Feelings) > 0 && item.Category == CategoryEmotions {
		return true
	}
	return false
}
