// Package dialogue owns the per-session turn lifecycle: capture, live
// analysis of partial transcripts, the thinking phase (crisis check,
// classification, memory update, response composition) and the speaking /
// re-listen loop. All lifecycle transitions happen here and nowhere else.
package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solace-labs/solace/internal/analysis"
	"github.com/solace-labs/solace/internal/compose"
	"github.com/solace-labs/solace/internal/memory"
	"github.com/solace-labs/solace/internal/observability"
	"github.com/solace-labs/solace/internal/policy"
	"github.com/solace-labs/solace/internal/protocol"
	"github.com/solace-labs/solace/internal/trace"
)

// escalationNotice is the fixed hand-off message appended when a crisis
// keyword is detected. Wording is deliberately stable; tests and the UI
// rely on it.
const escalationNotice = "What you just shared matters, and I don't want you to go through it alone. I'm connecting you with a human crisis counselor right now."

var (
	ErrClosed    = errors.New("dialogue engine closed")
	ErrBusy      = errors.New("turn already in progress")
	ErrMicDenied = errors.New("microphone permission denied")
)

// Config tunes the engine's timers. Zero values fall back to defaults.
type Config struct {
	SessionID        string
	DebounceWindow   time.Duration
	MinLiveTraceLen  int
	EscalationDelay  time.Duration
	MemoryFlagWindow time.Duration
	EmergencyRoute   string
}

func (c Config) withDefaults() Config {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 600 * time.Millisecond
	}
	if c.MinLiveTraceLen <= 0 {
		c.MinLiveTraceLen = 12
	}
	if c.EscalationDelay <= 0 {
		c.EscalationDelay = 3 * time.Second
	}
	if c.MemoryFlagWindow <= 0 {
		c.MemoryFlagWindow = 2 * time.Second
	}
	if strings.TrimSpace(c.EmergencyRoute) == "" {
		c.EmergencyRoute = "/support/emergency"
	}
	return c
}

// Deps are the engine's collaborators. Store, Composer and Tracer are
// required; the rest may be nil (Speaker nil means speech unsupported).
type Deps struct {
	Store     *memory.Store
	Composer  *compose.Composer
	Tracer    *trace.Builder
	Speaker   Speaker
	Mic       MicGate
	Navigator Navigator
	Notifier  Notifier
	Mode      ModeSource
	Metrics   *observability.Metrics
	Archive   memory.Archive
	Logger    zerolog.Logger
	Sink      func(event any)

	// OnEscalation is invoked once per crisis escalation, so the session
	// layer can keep its escalation count.
	OnEscalation func()
}

type Engine struct {
	cfg  Config
	deps Deps

	mu          sync.Mutex
	state       State
	captureMode CaptureMode
	pending     string
	messages    []Message
	liveTrace   []trace.Step
	finalTrace  []trace.Step

	live          debouncer
	redirectTimer *time.Timer
	memFlagTimer  *time.Timer
	speechGen     uint64
	speechCancel  context.CancelFunc
	closed        bool
}

func NewEngine(cfg Config, deps Deps) *Engine {
	return &Engine{
		cfg:   cfg.withDefaults(),
		deps:  deps,
		state: StateIdle,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Messages returns a snapshot of the append-only conversation.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// MemoryItems returns a snapshot of working memory.
func (e *Engine) MemoryItems() []memory.Item {
	return e.deps.Store.Items()
}

// Trace returns the current trace list and its scope: the final trace once
// a turn has completed, otherwise the live trace.
func (e *Engine) Trace() (steps []trace.Step, scope string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.finalTrace) > 0 {
		return append([]trace.Step(nil), e.finalTrace...), protocol.TraceScopeFinal
	}
	return append([]trace.Step(nil), e.liveTrace...), protocol.TraceScopeLive
}

// StartCapture begins a capture session. Voice capture asks the mic gate
// first; denial surfaces a notice and leaves the engine in Idle.
func (e *Engine) StartCapture(mode CaptureMode) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.state != StateIdle && e.state != StateCapturing {
		e.mu.Unlock()
		return ErrBusy
	}
	if mode == CaptureVoice && e.deps.Mic != nil {
		if err := e.deps.Mic.Request(); err != nil {
			e.mu.Unlock()
			e.notify("Microphone access was denied. You can keep typing instead.")
			e.deps.Logger.Warn().Str("session_id", e.cfg.SessionID).Err(err).Msg("mic permission denied")
			return ErrMicDenied
		}
	}
	evts := e.transitionLocked(StateCapturing)
	e.captureMode = mode
	e.pending = ""
	e.mu.Unlock()
	e.emit(evts...)
	return nil
}

// OnPartialText feeds one incremental transcript update during voice
// capture. Each call supersedes any pending live analysis; only the most
// recent text within the debounce window is analyzed.
func (e *Engine) OnPartialText(text string) {
	e.mu.Lock()
	if e.closed || e.state != StateCapturing || e.captureMode != CaptureVoice {
		e.mu.Unlock()
		return
	}
	e.pending = text
	e.mu.Unlock()

	if e.live.Schedule(e.cfg.DebounceWindow, func() { e.runLiveAnalysis(text) }) {
		e.count(func(m *observability.Metrics) { m.DebounceCanceled.Inc() })
	}
}

// EndDictation closes the voice capture session and submits whatever the
// last partial delivered.
func (e *Engine) EndDictation() {
	e.mu.Lock()
	text := e.pending
	e.mu.Unlock()
	e.Submit(text)
}

// Submit runs one full turn for the given text. Empty or whitespace-only
// input is a no-op: no state transition, no message. Only one thinking
// phase is ever in flight; submissions outside Idle/Capturing are dropped.
func (e *Engine) Submit(text string) {
	trimmed := strings.TrimSpace(text)

	e.mu.Lock()
	if e.closed || trimmed == "" {
		e.mu.Unlock()
		return
	}
	if e.state != StateIdle && e.state != StateCapturing {
		e.deps.Logger.Debug().Str("session_id", e.cfg.SessionID).Str("state", string(e.state)).Msg("submit dropped: turn in progress")
		e.mu.Unlock()
		return
	}
	if e.state == StateIdle {
		e.captureMode = CaptureText
	}
	e.live.Cancel()
	e.pending = ""

	evts := e.thinkLocked(trimmed)
	e.mu.Unlock()
	e.emit(evts...)
}

// thinkLocked is the whole thinking phase: crisis check first, then
// classification, memory update and composition. Runs to completion under
// the engine lock, which is what serializes turns.
func (e *Engine) thinkLocked(text string) []any {
	started := time.Now()
	var evts []any

	evts = append(evts, e.transitionLocked(StateThinking)...)

	userMsg := e.appendMessageLocked(text, SenderUser, false)
	evts = append(evts, protocol.MessageAppend{Type: protocol.TypeMessageAppend, SessionID: e.cfg.SessionID, Message: toMessagePayload(userMsg)})

	if policy.IsCrisis(text) {
		evts = append(evts, e.escalateLocked()...)
		e.count(func(m *observability.Metrics) {
			m.Escalations.Inc()
			m.Turns.WithLabelValues("escalated").Inc()
		})
		e.deps.Metrics.ObserveThinkingLatency(time.Since(started))
		return evts
	}

	mode := e.modeLocked()
	entities := analysis.Extract(text)
	category := analysis.Classify(text)

	steps := e.deps.Tracer.FinalSteps(entities, category)
	batch := e.deps.Store.UpdateFromText(text)
	e.archiveItems(batch)
	for _, item := range batch {
		steps = append(steps, e.deps.Tracer.MemoryWrite(item.Content))
	}
	steps = append(steps, e.deps.Tracer.Conclusion(string(mode)))

	// The final trace replaces the live one wholesale.
	e.finalTrace = steps
	e.liveTrace = nil
	evts = append(evts, protocol.TraceUpdate{Type: protocol.TypeTraceUpdate, SessionID: e.cfg.SessionID, Scope: protocol.TraceScopeFinal, Steps: toStepPayloads(steps)})
	if len(batch) > 0 {
		evts = append(evts, e.memoryUpdatedLocked())
	}

	relevant := e.deps.Store.RelevantTo(text)
	reply := e.deps.Composer.Compose(text, mode, relevant)

	assistantMsg := e.appendMessageLocked(reply, SenderAssistant, false)
	evts = append(evts, protocol.MessageAppend{Type: protocol.TypeMessageAppend, SessionID: e.cfg.SessionID, Message: toMessagePayload(assistantMsg)})
	evts = append(evts, e.transitionLocked(StateResponding)...)

	e.count(func(m *observability.Metrics) { m.Turns.WithLabelValues("responded").Inc() })
	e.deps.Metrics.ObserveThinkingLatency(time.Since(started))

	evts = append(evts, e.startPlaybackLocked(reply)...)
	return evts
}

// escalateLocked appends the fixed hand-off message and arms the redirect
// timer. The normal composition path is never reached from here.
func (e *Engine) escalateLocked() []any {
	var evts []any

	e.finalTrace = []trace.Step{
		e.deps.Tracer.MemoryWrite("safety check triggered"),
		e.deps.Tracer.Conclusion("human hand-off"),
	}
	e.liveTrace = nil
	evts = append(evts, protocol.TraceUpdate{Type: protocol.TypeTraceUpdate, SessionID: e.cfg.SessionID, Scope: protocol.TraceScopeFinal, Steps: toStepPayloads(e.finalTrace)})

	msg := e.appendMessageLocked(escalationNotice, SenderAssistant, true)
	evts = append(evts, protocol.MessageAppend{Type: protocol.TypeMessageAppend, SessionID: e.cfg.SessionID, Message: toMessagePayload(msg)})
	evts = append(evts, e.transitionLocked(StateEscalated)...)

	e.deps.Logger.Warn().Str("session_id", e.cfg.SessionID).Msg("crisis escalation: handing off to human support")
	if e.deps.OnEscalation != nil {
		e.deps.OnEscalation()
	}

	if e.redirectTimer != nil {
		e.redirectTimer.Stop()
	}
	e.redirectTimer = time.AfterFunc(e.cfg.EscalationDelay, e.fireRedirect)
	return evts
}

func (e *Engine) fireRedirect() {
	e.mu.Lock()
	if e.closed || e.state != StateEscalated {
		e.mu.Unlock()
		return
	}
	e.redirectTimer = nil
	evts := e.transitionLocked(StateIdle)
	e.mu.Unlock()

	if e.deps.Navigator != nil {
		e.deps.Navigator.GoTo(e.cfg.EmergencyRoute)
	}
	e.emit(protocol.EscalationRedirect{Type: protocol.TypeEscalationRedirect, SessionID: e.cfg.SessionID, Route: e.cfg.EmergencyRoute})
	e.emit(evts...)
}

// startPlaybackLocked moves Responding into Speaking when the session is a
// voice session and speech is available; otherwise straight to Idle.
func (e *Engine) startPlaybackLocked(reply string) []any {
	if e.captureMode != CaptureVoice {
		return e.transitionLocked(StateIdle)
	}

	if e.deps.Speaker == nil || !e.deps.Speaker.Supported() {
		evts := []any{
			protocol.SpeechEvent{Type: protocol.TypeSpeechEvent, SessionID: e.cfg.SessionID, Code: "unsupported"},
			e.noticeLocked("Speech playback isn't available on this device. Showing the reply as text."),
		}
		return append(evts, e.transitionLocked(StateIdle)...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done, err := e.deps.Speaker.Speak(ctx, reply)
	if err != nil {
		cancel()
		e.deps.Logger.Error().Str("session_id", e.cfg.SessionID).Err(err).Msg("speech start failed")
		evts := []any{e.noticeLocked("Speech playback failed. Showing the reply as text.")}
		return append(evts, e.transitionLocked(StateIdle)...)
	}

	e.speechGen++
	gen := e.speechGen
	e.speechCancel = cancel

	evts := []any{protocol.SpeechEvent{Type: protocol.TypeSpeechEvent, SessionID: e.cfg.SessionID, Code: "started"}}
	evts = append(evts, e.transitionLocked(StateSpeaking)...)

	go func() {
		select {
		case <-done:
			e.speechFinished(gen)
		case <-ctx.Done():
		}
	}()
	return evts
}

// speechFinished is the deferred continuation behind the auto re-listen
// loop: when playback completes in a voice session, capture restarts on
// its own. An explicit Stop between completion and here wins via the
// generation check.
func (e *Engine) speechFinished(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.speechGen || e.state != StateSpeaking {
		e.mu.Unlock()
		return
	}
	if e.speechCancel != nil {
		// Release the playback context even on normal completion so
		// anything waiting on it does not outlive the turn.
		e.speechCancel()
		e.speechCancel = nil
	}
	evts := []any{protocol.SpeechEvent{Type: protocol.TypeSpeechEvent, SessionID: e.cfg.SessionID, Code: "finished"}}

	relisten := e.captureMode == CaptureVoice
	if relisten && e.deps.Mic != nil {
		if err := e.deps.Mic.Request(); err != nil {
			relisten = false
			e.deps.Logger.Warn().Str("session_id", e.cfg.SessionID).Err(err).Msg("auto re-listen blocked: mic denied")
		}
	}
	if relisten {
		evts = append(evts, e.transitionLocked(StateCapturing)...)
		e.pending = ""
	} else {
		evts = append(evts, e.transitionLocked(StateIdle)...)
	}
	e.mu.Unlock()
	e.emit(evts...)
}

// Stop is the explicit user stop: it cancels pending live analysis, any
// in-flight speech and the auto re-listen continuation, and returns to
// Idle. It does not cancel an armed escalation redirect.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.live.Cancel()
	e.pending = ""
	e.speechGen++
	if e.speechCancel != nil {
		e.speechCancel()
		e.speechCancel = nil
	}

	var evts []any
	switch e.state {
	case StateCapturing, StateSpeaking, StateResponding:
		evts = e.transitionLocked(StateIdle)
	}
	e.mu.Unlock()
	e.emit(evts...)
}

// Close tears the engine down: every pending timer and continuation is
// cancelled so nothing mutates state or memory afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.live.Cancel()
	if e.redirectTimer != nil {
		e.redirectTimer.Stop()
		e.redirectTimer = nil
	}
	if e.memFlagTimer != nil {
		e.memFlagTimer.Stop()
		e.memFlagTimer = nil
	}
	e.speechGen++
	if e.speechCancel != nil {
		e.speechCancel()
		e.speechCancel = nil
	}
	e.mu.Unlock()
}

// runLiveAnalysis is the debounced body: extract entities, narrate 1-2
// live steps when the text is long enough, and run the memory update path
// either way.
func (e *Engine) runLiveAnalysis(text string) {
	e.mu.Lock()
	if e.closed || e.state != StateCapturing || e.captureMode != CaptureVoice {
		e.mu.Unlock()
		return
	}

	var evts []any
	entities := analysis.Extract(text)
	if len(strings.TrimSpace(text)) >= e.cfg.MinLiveTraceLen {
		e.liveTrace = append(e.liveTrace, e.deps.Tracer.LiveSteps(entities)...)
	}
	batch := e.deps.Store.UpdateFromText(text)
	e.archiveItems(batch)
	for _, item := range batch {
		e.liveTrace = append(e.liveTrace, e.deps.Tracer.MemoryWrite(item.Content))
	}
	if len(e.liveTrace) > 0 {
		evts = append(evts, protocol.TraceUpdate{Type: protocol.TypeTraceUpdate, SessionID: e.cfg.SessionID, Scope: protocol.TraceScopeLive, Steps: toStepPayloads(e.liveTrace)})
	}
	if len(batch) > 0 {
		evts = append(evts, e.memoryUpdatedLocked())
	}
	e.mu.Unlock()

	e.count(func(m *observability.Metrics) { m.LiveAnalyses.Inc() })
	e.emit(evts...)
}

// memoryUpdatedLocked emits the snapshot with the transient just-updated
// flag and arms the timer that clears it after the display window.
func (e *Engine) memoryUpdatedLocked() any {
	if e.memFlagTimer != nil {
		e.memFlagTimer.Stop()
	}
	e.memFlagTimer = time.AfterFunc(e.cfg.MemoryFlagWindow, func() {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		e.memFlagTimer = nil
		items := e.deps.Store.Items()
		e.mu.Unlock()
		e.emit(protocol.MemoryUpdate{Type: protocol.TypeMemoryUpdate, SessionID: e.cfg.SessionID, Items: toItemPayloads(items), JustUpdated: false})
	})
	return protocol.MemoryUpdate{Type: protocol.TypeMemoryUpdate, SessionID: e.cfg.SessionID, Items: toItemPayloads(e.deps.Store.Items()), JustUpdated: true}
}

func (e *Engine) appendMessageLocked(content string, sender Sender, escalated bool) Message {
	msg := Message{
		ID:          uuid.NewString(),
		Content:     content,
		Sender:      sender,
		Timestamp:   time.Now().UTC(),
		IsEscalated: escalated,
	}
	e.messages = append(e.messages, msg)
	if e.deps.Archive != nil {
		go e.archiveMessage(msg)
	}
	return msg
}

// archiveItems persists distilled memory items alongside the transcript.
func (e *Engine) archiveItems(batch []memory.Item) {
	if e.deps.Archive == nil || len(batch) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, item := range batch {
			record := memory.Record{
				SessionID: e.cfg.SessionID,
				Kind:      memory.RecordKindMemoryItem,
				Content:   item.Content,
				Category:  item.Category,
				CreatedAt: item.Date,
			}
			if err := e.deps.Archive.Save(ctx, record); err != nil {
				e.deps.Logger.Error().Str("session_id", e.cfg.SessionID).Err(err).Msg("archive save failed")
			}
		}
	}()
}

func (e *Engine) archiveMessage(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	record := memory.Record{
		SessionID: e.cfg.SessionID,
		Kind:      memory.RecordKindMessage,
		Role:      string(msg.Sender),
		Content:   msg.Content,
		Escalated: msg.IsEscalated,
		CreatedAt: msg.Timestamp,
	}
	if err := e.deps.Archive.Save(ctx, record); err != nil {
		e.deps.Logger.Error().Str("session_id", e.cfg.SessionID).Err(err).Msg("archive save failed")
	}
}

func (e *Engine) transitionLocked(next State) []any {
	if e.state == next {
		return nil
	}
	e.deps.Logger.Debug().Str("session_id", e.cfg.SessionID).Str("from", string(e.state)).Str("to", string(next)).Msg("state transition")
	e.state = next
	return []any{protocol.StateChange{Type: protocol.TypeStateChange, SessionID: e.cfg.SessionID, State: string(next)}}
}

func (e *Engine) modeLocked() compose.Mode {
	if e.deps.Mode != nil {
		return e.deps.Mode()
	}
	return compose.ModeStandard
}

func (e *Engine) notify(text string) {
	e.emit(e.noticeLocked(text))
}

// noticeLocked pushes the text to the notifier and returns the wire event
// for the caller to emit once the lock is released.
func (e *Engine) noticeLocked(text string) any {
	if e.deps.Notifier != nil {
		e.deps.Notifier.Notify(text)
	}
	return protocol.Notice{Type: protocol.TypeNotice, SessionID: e.cfg.SessionID, Text: text}
}

func (e *Engine) emit(events ...any) {
	if e.deps.Sink == nil {
		return
	}
	for _, evt := range events {
		e.deps.Sink(evt)
	}
}

func (e *Engine) count(fn func(m *observability.Metrics)) {
	if e.deps.Metrics != nil {
		fn(e.deps.Metrics)
	}
}

func toMessagePayload(m Message) protocol.MessagePayload {
	return protocol.MessagePayload{
		ID:          m.ID,
		Content:     m.Content,
		Sender:      string(m.Sender),
		TimestampMs: m.Timestamp.UnixMilli(),
		IsEscalated: m.IsEscalated,
	}
}

func toStepPayloads(steps []trace.Step) []protocol.TraceStepPayload {
	out := make([]protocol.TraceStepPayload, 0, len(steps))
	for _, s := range steps {
		out = append(out, protocol.TraceStepPayload{ID: s.ID, Kind: string(s.Kind), Content: s.Content})
	}
	return out
}

func toItemPayloads(items []memory.Item) []protocol.MemoryItemPayload {
	out := make([]protocol.MemoryItemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, protocol.MemoryItemPayload{
			ID:         it.ID,
			Content:    it.Content,
			Category:   it.Category,
			DateMs:     it.Date.UnixMilli(),
			Importance: it.Importance,
		})
	}
	return out
}
