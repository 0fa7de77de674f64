// Package compose turns a submitted message, the active mode and the
// relevant slice of working memory into a single reply string. Selection
// is template-table driven: special-topic overrides first, then the
// mode/category family, then a uniform random variant pick.
package compose

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/solace-labs/solace/internal/analysis"
	"github.com/solace-labs/solace/internal/memory"
)

var deadlineTopicWords = []string{"assignment", "presentation", "deadline", "exam", "project"}

var stressTopicWords = []string{"stress", "stressing", "stressed", "overwhelmed", "pressure"}

type Composer struct {
	rng *rand.Rand
}

// NewComposer builds a composer with an injected rng; pass a seeded
// rand.Rand in tests for deterministic variant selection.
func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// Compose returns exactly one non-empty reply. mem is the already-filtered
// relevant slice (the store's RelevantTo result); its first item is the
// interpolation candidate.
func (c *Composer) Compose(message string, mode Mode, mem []memory.Item) string {
	if fam, ok := c.specialTopic(message, mem); ok {
		return c.render(fam, mem)
	}

	category := analysis.Classify(message)
	if families, ok := modeCategoryFamilies[mode]; ok {
		if fam, ok := families[category]; ok {
			return c.render(fam, mem)
		}
	}
	fam, ok := modeGenericFamilies[mode]
	if !ok {
		fam = modeGenericFamilies[ModeStandard]
	}
	return c.render(fam, mem)
}

// specialTopic checks the hard-coded overrides, in priority order:
// deadline-flavored messages backed by a schedule item, then a named
// person tied to stress language. The deadline override only claims the
// turn when supporting memory exists; a first-ever mention of a deadline
// still routes through the mode/category families.
func (c *Composer) specialTopic(message string, mem []memory.Item) (family, bool) {
	lower := strings.ToLower(message)

	if containsAny(lower, deadlineTopicWords) && len(mem) > 0 {
		if hasCategory(mem, memory.CategorySchedule) {
			return workloadWithSchedule, true
		}
		return workloadNoSchedule, true
	}

	entities := analysis.Extract(message)
	if len(entities.People) > 0 && containsAny(lower, stressTopicWords) {
		if len(mem) > 0 {
			return personStressWithMemory, true
		}
		return personStressNoMemory, true
	}

	return nil, false
}

func (c *Composer) render(fam family, mem []memory.Item) string {
	v := fam[c.rng.Intn(len(fam))]

	if len(mem) > 0 && v.WithMemory != "" {
		return fmt.Sprintf(v.WithMemory, strings.TrimSpace(mem[0].Content))
	}
	if v.Plain != "" {
		return v.Plain
	}
	// Variant only has a memory form but no memory is available: retry the
	// family for a plain variant, falling back to a safe default.
	for _, alt := range fam {
		if alt.Plain != "" {
			return alt.Plain
		}
	}
	return "I'm here with you. Tell me more about what's on your mind."
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func hasCategory(mem []memory.Item, category string) bool {
	for _, item := range mem {
		if item.Category == category {
			return true
		}
	}
	return false
}
