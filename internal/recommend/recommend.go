// Package recommend maps onboarding intake answers to a starting
// conversation mode. It is a transparent weighted tally, not a diagnostic
// instrument.
package recommend

import (
	"strings"

	"github.com/solace-labs/solace/internal/compose"
)

// Indicator is one intake answer the user selected.
type Indicator string

const (
	IndicatorWorkPressure   Indicator = "work_pressure"
	IndicatorBurnout        Indicator = "burnout"
	IndicatorPanic          Indicator = "panic"
	IndicatorLowMood        Indicator = "low_mood"
	IndicatorSleepTrouble   Indicator = "sleep_trouble"
	IndicatorOngoingTherapy Indicator = "ongoing_therapy"
	IndicatorJustTalking    Indicator = "just_talking"
)

// indicator weights per mode. Ties resolve by the fixed order below, so
// the outcome is deterministic for a given answer set.
var modeWeights = map[Indicator]map[compose.Mode]int{
	IndicatorWorkPressure:   {compose.ModeWorkplace: 3, compose.ModeStandard: 1},
	IndicatorBurnout:        {compose.ModeWorkplace: 2, compose.ModeRelaxation: 2},
	IndicatorPanic:          {compose.ModeClinical: 3, compose.ModeRelaxation: 1},
	IndicatorLowMood:        {compose.ModeClinical: 2, compose.ModeAssisted: 1},
	IndicatorSleepTrouble:   {compose.ModeRelaxation: 3},
	IndicatorOngoingTherapy: {compose.ModeAssisted: 3},
	IndicatorJustTalking:    {compose.ModeStandard: 2},
}

var tieOrder = []compose.Mode{
	compose.ModeStandard,
	compose.ModeAssisted,
	compose.ModeClinical,
	compose.ModeWorkplace,
	compose.ModeRelaxation,
}

// Recommend tallies the selected indicators and returns the best-scoring
// mode. No indicators, or only unknown ones, yield the standard mode.
func Recommend(indicators []Indicator) compose.Mode {
	scores := make(map[compose.Mode]int)
	for _, ind := range indicators {
		key := Indicator(strings.ToLower(strings.TrimSpace(string(ind))))
		for mode, weight := range modeWeights[key] {
			scores[mode] += weight
		}
	}

	best := compose.ModeStandard
	bestScore := 0
	for _, mode := range tieOrder {
		if scores[mode] > bestScore {
			best = mode
			bestScore = scores[mode]
		}
	}
	return best
}
