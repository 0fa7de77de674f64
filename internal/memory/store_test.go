package memory

import (
	"strings"
	"testing"
)

func TestShouldAddPeopleDedup(t *testing.T) {
	s := NewStore()
	s.Insert([]Item{{Content: "Sarah is someone the user talks about", Category: CategoryPeople}})

	if s.ShouldAdd("Sarah", CategoryPeople) {
		t.Fatalf("ShouldAdd(Sarah) = true, want false after insert")
	}
	if s.ShouldAdd("sarah", CategoryPeople) {
		t.Fatalf("ShouldAdd(sarah) = true, dedup must be case-insensitive")
	}
	if !s.ShouldAdd("Marco", CategoryPeople) {
		t.Fatalf("ShouldAdd(Marco) = false, want true")
	}
}

func TestShouldAddContainmentOverMatch(t *testing.T) {
	// Substring containment means "Ann" is swallowed by an existing "Anna"
	// item. Preserved behavior, not corrected.
	s := NewStore()
	s.Insert([]Item{{Content: "Anna is someone the user talks about", Category: CategoryPeople}})
	if s.ShouldAdd("Ann", CategoryPeople) {
		t.Fatalf("ShouldAdd(Ann) = true, want false via containment")
	}
}

func TestUpdateFromTextDedupsSecondMention(t *testing.T) {
	s := NewStore()
	first := s.UpdateFromText("Sarah was kind to me")
	if countCategory(first, CategoryPeople) != 1 {
		t.Fatalf("first batch people = %d, want 1", countCategory(first, CategoryPeople))
	}
	second := s.UpdateFromText("Yesterday Sarah called me")
	if countCategory(second, CategoryPeople) != 0 {
		t.Fatalf("second batch people = %d, want 0 (dedup)", countCategory(second, CategoryPeople))
	}
	people := 0
	for _, item := range s.Items() {
		if item.Category == CategoryPeople {
			people++
		}
	}
	if people != 1 {
		t.Fatalf("stored people items = %d, want 1", people)
	}
}

func TestUpdateFromTextScheduleComposite(t *testing.T) {
	s := NewStore()
	batch := s.UpdateFromText("Sarah has been really stressing me out at work with the upcoming assignment that is due next Monday.")

	var schedule *Item
	for i := range batch {
		if batch[i].Category == CategorySchedule {
			schedule = &batch[i]
		}
	}
	if schedule == nil {
		t.Fatalf("no schedule item in batch %v", batch)
	}
	if !strings.Contains(schedule.Content, "assignment") || !strings.Contains(schedule.Content, "next Monday") {
		t.Fatalf("schedule content = %q, want event and date combined", schedule.Content)
	}
	// Composite item is in addition to the per-entity items.
	if countCategory(batch, CategoryPeople) != 1 || countCategory(batch, CategoryEvents) != 1 {
		t.Fatalf("batch = %v, want people and event items alongside schedule", batch)
	}
}

func TestUpdateFromTextNoScheduleWithoutDate(t *testing.T) {
	s := NewStore()
	batch := s.UpdateFromText("the assignment is going badly")
	if countCategory(batch, CategorySchedule) != 0 {
		t.Fatalf("batch = %v, schedule item without date", batch)
	}
}

func TestRelevantToPersonAndSchedule(t *testing.T) {
	s := NewStore()
	s.UpdateFromText("Sarah has been really stressing me out at work with the upcoming assignment that is due next Monday.")

	got := s.RelevantTo("I've only finished about half of the presentation and I'm worried I won't finish in time.")
	if len(got) == 0 {
		t.Fatalf("RelevantTo returned nothing, want schedule/emotion context")
	}
	hasSchedule := false
	for _, item := range got {
		if item.Category == CategorySchedule {
			hasSchedule = true
		}
	}
	if !hasSchedule {
		t.Fatalf("RelevantTo = %v, want prior schedule item", got)
	}
}

func TestRelevantToEmotionsOnFeeling(t *testing.T) {
	s := NewStore()
	s.UpdateFromText("I felt anxious at work")
	got := s.RelevantTo("still feeling anxious")
	found := false
	for _, item := range got {
		if item.Category == CategoryEmotions {
			found = true
		}
	}
	if !found {
		t.Fatalf("RelevantTo = %v, want emotion items when a feeling matched", got)
	}
}

func TestRelevantToDedupedByID(t *testing.T) {
	s := NewStore()
	s.Insert([]Item{{ID: "x", Content: "Sarah and the meeting", Category: CategoryPeople}})
	got := s.RelevantTo("Sarah mentioned the meeting")
	if len(got) != 1 {
		t.Fatalf("RelevantTo = %v, want single item despite double match", got)
	}
}

func TestInsertAssignsIDsAndDates(t *testing.T) {
	s := NewStore()
	s.Insert([]Item{{Content: "a", Category: CategoryEvents}, {Content: "b", Category: CategoryEvents}})

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.ID == "" {
			t.Fatalf("item %q missing generated ID", item.Content)
		}
		if item.Date.IsZero() {
			t.Fatalf("item %q missing assigned date", item.Content)
		}
	}
	s.Insert(nil)
	if got := s.Len(); got != 2 {
		t.Fatalf("Len after empty insert = %d, want 2", got)
	}
}

func countCategory(items []Item, category string) int {
	n := 0
	for _, item := range items {
		if item.Category == category {
			n++
		}
	}
	return n
}
