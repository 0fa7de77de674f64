package dialogue

import "sync"

// EngineFactory builds an engine for a session. The sink passed in is the
// hub's broadcast for that session; the factory must wire it into Deps.
type EngineFactory func(sessionID string, sink func(event any)) *Engine

// Hub owns one engine per active session and fans its events out to every
// connected websocket subscriber. Events are dropped per-subscriber when a
// subscriber's queue is full; slow readers never block the engine.
type Hub struct {
	mu      sync.Mutex
	factory EngineFactory
	engines map[string]*Engine
	subs    map[string]map[chan any]struct{}
}

func NewHub(factory EngineFactory) *Hub {
	return &Hub{
		factory: factory,
		engines: make(map[string]*Engine),
		subs:    make(map[string]map[chan any]struct{}),
	}
}

// Engine returns the session's engine, creating it on first use.
func (h *Hub) Engine(sessionID string) *Engine {
	h.mu.Lock()
	defer h.mu.Unlock()
	if eng, ok := h.engines[sessionID]; ok {
		return eng
	}
	eng := h.factory(sessionID, func(evt any) { h.broadcast(sessionID, evt) })
	h.engines[sessionID] = eng
	return eng
}

// Lookup returns the engine without creating one.
func (h *Hub) Lookup(sessionID string) (*Engine, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	eng, ok := h.engines[sessionID]
	return eng, ok
}

// Subscribe registers a listener for the session's events. The returned
// cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(sessionID string) (<-chan any, func()) {
	ch := make(chan any, 256)
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan any]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Shutdown tears down the session's engine and forgets it.
func (h *Hub) Shutdown(sessionID string) {
	h.mu.Lock()
	eng, ok := h.engines[sessionID]
	delete(h.engines, sessionID)
	h.mu.Unlock()
	if ok {
		eng.Close()
	}
}

// ShutdownAll closes every engine; used on process shutdown.
func (h *Hub) ShutdownAll() {
	h.mu.Lock()
	engines := make([]*Engine, 0, len(h.engines))
	for _, eng := range h.engines {
		engines = append(engines, eng)
	}
	h.engines = make(map[string]*Engine)
	h.mu.Unlock()
	for _, eng := range engines {
		eng.Close()
	}
}

func (h *Hub) broadcast(sessionID string, evt any) {
	h.mu.Lock()
	targets := make([]chan any, 0, len(h.subs[sessionID]))
	for ch := range h.subs[sessionID] {
		targets = append(targets, ch)
	}
	h.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- evt:
		default:
		}
	}
}
