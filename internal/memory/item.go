package memory

import "time"

// Item categories used by the working store.
const (
	CategoryPeople   = "people"
	CategoryEvents   = "events"
	CategoryEmotions = "emotions"
	CategoryPlaces   = "places"
	CategorySchedule = "schedule"
)

// Item is one fact distilled from the conversation. Items are append-only
// for the life of a session; nothing is ever deleted.
type Item struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Date       time.Time `json:"date"`
	Importance float64   `json:"importance"`
}
