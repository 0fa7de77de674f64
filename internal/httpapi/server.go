package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/solace-labs/solace/internal/compose"
	"github.com/solace-labs/solace/internal/config"
	"github.com/solace-labs/solace/internal/dialogue"
	"github.com/solace-labs/solace/internal/memory"
	"github.com/solace-labs/solace/internal/observability"
	"github.com/solace-labs/solace/internal/protocol"
	"github.com/solace-labs/solace/internal/recommend"
	"github.com/solace-labs/solace/internal/session"
)

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	hub      *dialogue.Hub
	archive  memory.Archive
	metrics  *observability.Metrics
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, hub *dialogue.Hub, archive memory.Archive, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		hub:      hub,
		archive:  archive,
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other sites cannot drive a user's session
				// if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/session", s.handleCreateSession)
	r.Post("/v1/session/{id}/end", s.handleEndSession)
	r.Post("/v1/session/{id}/mode", s.handleSetMode)
	r.Get("/v1/session/{id}", s.handleGetSession)
	r.Get("/v1/session/{id}/messages", s.handleListMessages)
	r.Get("/v1/session/{id}/memory", s.handleListMemory)
	r.Get("/v1/session/{id}/trace", s.handleGetTrace)
	r.Get("/v1/session/{id}/history", s.handleHistory)
	r.Get("/v1/session/ws", s.handleSessionWS)
	r.Post("/v1/onboarding/recommend", s.handleRecommend)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ready",
		"archive_disabled": s.archive == nil,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "anonymous"
	}
	mode, err := compose.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}

	sess := s.sessions.Create(req.UserID, mode)
	s.hub.Engine(sess.ID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Status:          sess.Status,
		Mode:            sess.Mode,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.hub.Shutdown(id)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	mode, err := compose.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	if err := s.sessions.SetMode(id, mode); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": id, "mode": mode})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	msgs := eng.Messages()
	payloads := make([]protocol.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, protocol.MessagePayload{
			ID:          m.ID,
			Content:     m.Content,
			Sender:      string(m.Sender),
			TimestampMs: m.Timestamp.UnixMilli(),
			IsEscalated: m.IsEscalated,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": payloads})
}

func (s *Server) handleListMemory(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	items := eng.MemoryItems()
	payloads := make([]protocol.MemoryItemPayload, 0, len(items))
	for _, it := range items {
		payloads = append(payloads, protocol.MemoryItemPayload{
			ID:         it.ID,
			Content:    it.Content,
			Category:   it.Category,
			DateMs:     it.Date.UnixMilli(),
			Importance: it.Importance,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	steps, scope := eng.Trace()
	payloads := make([]protocol.TraceStepPayload, 0, len(steps))
	for _, step := range steps {
		payloads = append(payloads, protocol.TraceStepPayload{ID: step.ID, Kind: string(step.Kind), Content: step.Content})
	}
	respondJSON(w, http.StatusOK, map[string]any{"scope": scope, "steps": payloads})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.archive == nil {
		respondError(w, http.StatusNotImplemented, "archive_disabled", "transcript archive not configured")
		return
	}
	records, err := s.archive.History(r.Context(), id, s.cfg.ArchiveHistoryLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Indicators []recommend.Indicator `json:"indicators"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	mode := recommend.Recommend(req.Indicators)
	respondJSON(w, http.StatusOK, map[string]any{"mode": mode})
}

// engineFor resolves the session's engine for read endpoints, writing the
// error response itself when the session is unknown.
func (s *Server) engineFor(w http.ResponseWriter, r *http.Request) (*dialogue.Engine, bool) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return nil, false
	}
	return s.hub.Engine(id), true
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	eng := s.hub.Engine(sessionID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()

	events, unsubscribe := s.hub.Subscribe(sessionID)
	defer unsubscribe()

	ctx := r.Context()
	writerDone := make(chan struct{})
	stopWriter := make(chan struct{})
	// Rejections from the read loop ride this channel so the writer
	// goroutine stays the only writer on the connection.
	rejects := make(chan protocol.ErrorEvent, 8)
	writeEvent := func(evt any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(evt); err != nil {
			return false
		}
		if t, ok := messageTypeOf(evt); ok {
			s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
		}
		return true
	}
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopWriter:
				return
			case evt := <-rejects:
				if !writeEvent(evt) {
					return
				}
			case evt := <-events:
				if !writeEvent(evt) {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.logger.Debug().Str("session_id", sessionID).Err(err).Msg("invalid client message")
			select {
			case rejects <- protocol.ErrorEvent{Type: protocol.TypeErrorEvent, SessionID: sessionID, Code: "invalid_message", Detail: err.Error()}:
			default:
			}
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}
		_ = s.sessions.Touch(sessionID)
		s.dispatch(eng, parsed)
	}

	close(stopWriter)
	<-writerDone
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
}

// dispatch routes one parsed client message into the engine.
func (s *Server) dispatch(eng *dialogue.Engine, parsed any) {
	switch m := parsed.(type) {
	case protocol.ClientSubmit:
		eng.Submit(m.Text)
	case protocol.DictationPartial:
		eng.OnPartialText(m.Text)
	case protocol.ClientControl:
		switch m.Action {
		case protocol.ActionStartText:
			_ = eng.StartCapture(dialogue.CaptureText)
		case protocol.ActionStartVoice, protocol.ActionStartDictation:
			_ = eng.StartCapture(dialogue.CaptureVoice)
		case protocol.ActionEndDictation:
			eng.EndDictation()
		case protocol.ActionStop:
			eng.Stop()
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientSubmit:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.DictationPartial:
		return m.Type, true
	case protocol.StateChange:
		return m.Type, true
	case protocol.MessageAppend:
		return m.Type, true
	case protocol.TraceUpdate:
		return m.Type, true
	case protocol.MemoryUpdate:
		return m.Type, true
	case protocol.SpeechEvent:
		return m.Type, true
	case protocol.EscalationRedirect:
		return m.Type, true
	case protocol.Notice:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
