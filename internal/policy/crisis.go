package policy

import "strings"

// crisisKeywords is the fixed risk vocabulary. Matching is a plain
// case-insensitive substring scan: a keyword inside a larger word still
// counts. The list errs toward over-matching; escalating a false positive
// is acceptable, missing a true positive is not.
var crisisKeywords = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"end it all",
	"self-harm",
	"self harm",
	"hurt myself",
	"harm myself",
	"don't want to live",
	"do not want to live",
	"no reason to live",
	"better off without me",
	"better off dead",
	"crisis",
	"emergency",
}

// IsCrisis reports whether text contains any crisis keyword. It runs on
// every submitted message before classification and overrides normal
// response composition entirely.
func IsCrisis(text string) bool {
	in := strings.ToLower(text)
	for _, kw := range crisisKeywords {
		if strings.Contains(in, kw) {
			return true
		}
	}
	return false
}
