package compose

import (
	"fmt"
	"strings"
)

// Mode is the active therapeutic persona. It is supplied by the settings
// collaborator and read-only inside the dialogue core.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeAssisted   Mode = "assisted"
	ModeClinical   Mode = "clinical"
	ModeWorkplace  Mode = "workplace"
	ModeRelaxation Mode = "relaxation"
)

// Modes lists every selectable mode.
var Modes = []Mode{ModeStandard, ModeAssisted, ModeClinical, ModeWorkplace, ModeRelaxation}

// ParseMode validates a raw mode string, defaulting empty input to standard.
func ParseMode(raw string) (Mode, error) {
	v := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ModeStandard, nil
	}
	for _, m := range Modes {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}
