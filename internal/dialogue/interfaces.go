package dialogue

import (
	"context"

	"github.com/solace-labs/solace/internal/compose"
)

// Speaker plays back an assistant reply. Done channels close when playback
// finishes (or is cancelled); Supported gates the Speaking state entirely.
type Speaker interface {
	Supported() bool
	Speak(ctx context.Context, text string) (done <-chan struct{}, err error)
}

// MicGate models microphone permission. Request returns an error when the
// user has denied access.
type MicGate interface {
	Request() error
}

// Navigator is the redirect sink used only from the escalated state.
type Navigator interface {
	GoTo(route string)
}

// Notifier surfaces one-shot user-visible notices for permission or
// capability failures.
type Notifier interface {
	Notify(text string)
}

// ModeSource supplies the active therapeutic mode; read-only for the engine.
type ModeSource func() compose.Mode
