package dialogue

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockSpeaker simulates speech playback without an audio device. Playback
// duration scales with word count so longer replies stay "speaking" longer,
// the way a real synthesizer would.
type MockSpeaker struct {
	pace time.Duration // per word
}

// NewMockSpeaker builds a speaker with the given per-word pace. A zero or
// negative pace falls back to something fast enough for tests.
func NewMockSpeaker(pace time.Duration) *MockSpeaker {
	if pace <= 0 {
		pace = 5 * time.Millisecond
	}
	return &MockSpeaker{pace: pace}
}

func (s *MockSpeaker) Supported() bool { return true }

func (s *MockSpeaker) Speak(ctx context.Context, text string) (<-chan struct{}, error) {
	done := make(chan struct{})
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	timer := time.AfterFunc(time.Duration(words)*s.pace, func() { close(done) })
	go func() {
		<-ctx.Done()
		timer.Stop()
	}()
	return done, nil
}

// UnsupportedSpeaker models a device without speech synthesis.
type UnsupportedSpeaker struct{}

func (UnsupportedSpeaker) Supported() bool { return false }

func (UnsupportedSpeaker) Speak(context.Context, string) (<-chan struct{}, error) {
	done := make(chan struct{})
	close(done)
	return done, nil
}

// AllowMic grants every microphone request.
type AllowMic struct{}

func (AllowMic) Request() error { return nil }

// DenyMic refuses every microphone request with the given error.
type DenyMic struct{ Err error }

func (d DenyMic) Request() error { return d.Err }

// DictationFeed replays a scripted sequence of partial transcripts into an
// engine, one tick apart, then ends dictation. It stands in for a speech
// recognizer during demos and tests.
type DictationFeed struct {
	Engine   *Engine
	Partials []string
	Tick     time.Duration

	once sync.Once
}

// Run plays the script to completion or until ctx is cancelled. Safe to
// call once; later calls are no-ops.
func (f *DictationFeed) Run(ctx context.Context) {
	f.once.Do(func() {
		tick := f.Tick
		if tick <= 0 {
			tick = 50 * time.Millisecond
		}
		for _, partial := range f.Partials {
			select {
			case <-ctx.Done():
				return
			case <-time.After(tick):
			}
			f.Engine.OnPartialText(partial)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(tick):
		}
		f.Engine.EndDictation()
	})
}
