package analysis

import (
	"regexp"
	"strings"
)

// EntitySet holds every entity surfaced from a single piece of text.
// Fields are left empty (never nil-checked by callers) when nothing matched,
// and duplicates are preserved as found; deduplication is the memory store's job.
type EntitySet struct {
	People    []string
	Dates     []string
	Events    []string
	Feelings  []string
	Locations []string
}

// IsEmpty reports whether no field matched anything.
func (e EntitySet) IsEmpty() bool {
	return len(e.People) == 0 && len(e.Dates) == 0 && len(e.Events) == 0 &&
		len(e.Feelings) == 0 && len(e.Locations) == 0
}

// personStoplist filters capitalized words that are almost never names:
// common sentence starters plus weekday names (those are dates).
var personStoplist = map[string]struct{}{
	"i": {}, "i'm": {}, "i've": {}, "i'll": {}, "the": {}, "a": {}, "an": {},
	"my": {}, "me": {}, "we": {}, "it": {}, "he": {}, "she": {}, "they": {},
	"this": {}, "that": {}, "there": {}, "today": {}, "tomorrow": {},
	"yesterday": {}, "and": {}, "but": {}, "so": {}, "also": {}, "well": {},
	"on": {}, "at": {}, "in": {}, "if": {}, "when": {}, "then": {}, "now": {},
	"what": {}, "how": {}, "why": {}, "yes": {}, "no": {}, "not": {}, "maybe": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {}, "friday": {},
	"saturday": {}, "sunday": {},
}

var eventVocabulary = []string{
	"meeting", "presentation", "assignment", "deadline", "session",
	"interview", "exam", "test", "project",
}

var feelingVocabulary = []string{
	"stress", "anxious", "worried", "nervous", "excited", "happy", "sad",
	"angry", "frustrated", "overwhelmed", "tired", "exhausted",
}

var (
	capitalWordRe  = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	relativeDayRe  = regexp.MustCompile(`(?i)\b(?:next|this)\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	namedDayRe     = regexp.MustCompile(`(?i)\b(?:today|tomorrow|yesterday)\b`)
	dayOfMonthRe   = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	locationPhrase = regexp.MustCompile(`(?i)\b(?:at|in)\s+(work|home|school|office|university|college)\b`)
)

// Extract pulls people, dates, events, feelings and locations out of free text.
// Pure and total: any field with no match comes back empty, never an error.
func Extract(text string) EntitySet {
	var out EntitySet

	for _, word := range capitalWordRe.FindAllString(text, -1) {
		if _, stopped := personStoplist[strings.ToLower(word)]; stopped {
			continue
		}
		out.People = append(out.People, word)
	}

	out.Dates = append(out.Dates, relativeDayRe.FindAllString(text, -1)...)
	out.Dates = append(out.Dates, namedDayRe.FindAllString(text, -1)...)
	out.Dates = append(out.Dates, dayOfMonthRe.FindAllString(text, -1)...)

	lower := strings.ToLower(text)
	for _, event := range eventVocabulary {
		if containsWord(lower, event) {
			out.Events = append(out.Events, event)
		}
	}
	for _, feeling := range feelingVocabulary {
		if strings.Contains(lower, feeling) {
			out.Feelings = append(out.Feelings, feeling)
		}
	}

	for _, m := range locationPhrase.FindAllStringSubmatch(text, -1) {
		out.Locations = append(out.Locations, strings.ToLower(m[1]))
	}

	return out
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(lower[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(lower) || !isLetter(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
