// Package trace produces the reasoning-step records shown alongside a
// conversation: what was noticed in the text, what it was taken to mean,
// and which facts were written to working memory. Two populations exist
// per turn, a live trace built while the user is still talking and a final
// trace built when the turn completes; the final one replaces the live one.
package trace

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/solace-labs/solace/internal/analysis"
)

type Kind string

const (
	KindObservation Kind = "observation"
	KindAnalysis    Kind = "analysis"
	KindConclusion  Kind = "conclusion"
	KindMemoryWrite Kind = "memory-write"
)

type Step struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

// Builder picks phrasing variants with an injected rng so callers and
// tests control the randomness.
type Builder struct {
	rng *rand.Rand
}

func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

var peopleObservations = []string{
	"Noticing a mention of %s.",
	"%s comes up in what's being said.",
	"The user is talking about %s.",
}

var feelingObservations = []string{
	"Picking up on a feeling of %s.",
	"There's %s in how this is phrased.",
	"Emotional tone here: %s.",
}

var eventAnalyses = []string{
	"An upcoming %s seems to be on the user's mind.",
	"The %s sounds like a source of pressure.",
	"Tracking the %s as something to follow up on.",
}

var dateAnalyses = []string{
	"A time reference (%s) suggests this is time-sensitive.",
	"Noting the date mentioned: %s.",
}

var genericObservations = []string{
	"Listening and following along.",
	"Taking in what's being shared.",
}

// LiveSteps returns one or two steps describing the partial text, chosen
// from the variant tables for whichever entity fields are populated. The
// observation always appears; the analysis only when an event, date, or
// feeling-plus-person pairing gives it something to say.
func (b *Builder) LiveSteps(entities analysis.EntitySet) []Step {
	var steps []Step

	switch {
	case len(entities.People) > 0:
		steps = append(steps, b.step(KindObservation, b.pick(peopleObservations), entities.People[0]))
	case len(entities.Feelings) > 0:
		steps = append(steps, b.step(KindObservation, b.pick(feelingObservations), entities.Feelings[0]))
	default:
		steps = append(steps, b.step(KindObservation, b.pick(genericObservations)))
	}

	switch {
	case len(entities.Events) > 0:
		steps = append(steps, b.step(KindAnalysis, b.pick(eventAnalyses), entities.Events[0]))
	case len(entities.Dates) > 0:
		steps = append(steps, b.step(KindAnalysis, b.pick(dateAnalyses), entities.Dates[0]))
	case len(entities.Feelings) > 0 && len(entities.People) > 0:
		steps = append(steps, b.step(KindAnalysis, "The feeling of %s seems connected to %s.", entities.Feelings[0], entities.People[0]))
	}

	return steps
}

// FinalSteps builds the observation/analysis pair for a completed message,
// including its classified category.
func (b *Builder) FinalSteps(entities analysis.EntitySet, category analysis.Category) []Step {
	steps := b.LiveSteps(entities)
	steps = append(steps, b.step(KindAnalysis, "This reads as a %s topic.", string(category)))
	return steps
}

// MemoryWrite records one fact landing in working memory.
func (b *Builder) MemoryWrite(content string) Step {
	return b.step(KindMemoryWrite, "Remembering: %s", content)
}

// Conclusion names the response strategy chosen for the active mode.
func (b *Builder) Conclusion(mode string) Step {
	return b.step(KindConclusion, "Responding with the %s approach.", strings.ToLower(mode))
}

func (b *Builder) pick(variants []string) string {
	return variants[b.rng.Intn(len(variants))]
}

func (b *Builder) step(kind Kind, format string, args ...any) Step {
	return Step{
		ID:      uuid.NewString(),
		Kind:    kind,
		Content: fmt.Sprintf(format, args...),
	}
}
