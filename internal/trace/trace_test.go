package trace

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/solace-labs/solace/internal/analysis"
)

func newBuilder() *Builder {
	return NewBuilder(rand.New(rand.NewSource(1)))
}

func TestLiveStepsPersonAndEvent(t *testing.T) {
	b := newBuilder()
	entities := analysis.Extract("Sarah is worried about the assignment")
	steps := b.LiveSteps(entities)

	if len(steps) != 2 {
		t.Fatalf("LiveSteps len = %d, want 2", len(steps))
	}
	if steps[0].Kind != KindObservation {
		t.Fatalf("steps[0].Kind = %q, want observation", steps[0].Kind)
	}
	if !strings.Contains(steps[0].Content, "Sarah") {
		t.Fatalf("observation = %q, want to mention Sarah", steps[0].Content)
	}
	if steps[1].Kind != KindAnalysis {
		t.Fatalf("steps[1].Kind = %q, want analysis", steps[1].Kind)
	}
	if !strings.Contains(steps[1].Content, "assignment") {
		t.Fatalf("analysis = %q, want to mention assignment", steps[1].Content)
	}
}

func TestLiveStepsNoEntitiesStillObserves(t *testing.T) {
	b := newBuilder()
	steps := b.LiveSteps(analysis.EntitySet{})
	if len(steps) != 1 {
		t.Fatalf("LiveSteps len = %d, want 1 generic observation", len(steps))
	}
	if steps[0].Kind != KindObservation {
		t.Fatalf("Kind = %q, want observation", steps[0].Kind)
	}
}

func TestSeededBuilderIsDeterministic(t *testing.T) {
	entities := analysis.Extract("feeling anxious about the exam tomorrow")
	a := NewBuilder(rand.New(rand.NewSource(7))).LiveSteps(entities)
	b := NewBuilder(rand.New(rand.NewSource(7))).LiveSteps(entities)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Content != b[i].Content {
			t.Fatalf("step %d differs: %q vs %q", i, a[i].Content, b[i].Content)
		}
	}
}

func TestFinalStepsIncludeCategory(t *testing.T) {
	b := newBuilder()
	entities := analysis.Extract("work is hard")
	steps := b.FinalSteps(entities, analysis.CategoryWork)
	last := steps[len(steps)-1]
	if last.Kind != KindAnalysis || !strings.Contains(last.Content, "work") {
		t.Fatalf("final analysis = %+v, want category named", last)
	}
}

func TestConclusionNamesMode(t *testing.T) {
	b := newBuilder()
	step := b.Conclusion("Clinical")
	if step.Kind != KindConclusion {
		t.Fatalf("Kind = %q, want conclusion", step.Kind)
	}
	if !strings.Contains(step.Content, "clinical") {
		t.Fatalf("Content = %q, want mode named", step.Content)
	}
}

func TestMemoryWriteStep(t *testing.T) {
	b := newBuilder()
	step := b.MemoryWrite("has assignment on next Monday")
	if step.Kind != KindMemoryWrite {
		t.Fatalf("Kind = %q, want memory-write", step.Kind)
	}
	if !strings.Contains(step.Content, "assignment") {
		t.Fatalf("Content = %q, want item content", step.Content)
	}
}
