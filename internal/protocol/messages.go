package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Client → server.
	TypeClientSubmit     MessageType = "client_submit"
	TypeClientControl    MessageType = "client_control"
	TypeDictationPartial MessageType = "dictation_partial"

	// Server → client.
	TypeStateChange        MessageType = "state_change"
	TypeMessageAppend      MessageType = "message_append"
	TypeTraceUpdate        MessageType = "trace_update"
	TypeMemoryUpdate       MessageType = "memory_update"
	TypeSpeechEvent        MessageType = "speech_event"
	TypeEscalationRedirect MessageType = "escalation_redirect"
	TypeNotice             MessageType = "notice"
	TypeErrorEvent         MessageType = "error_event"
)

// Control actions accepted in ClientControl.
const (
	ActionStartText      = "start_text"
	ActionStartVoice     = "start_voice"
	ActionStartDictation = "start_dictation"
	ActionEndDictation   = "end_dictation"
	ActionStop           = "stop"
)

// Trace scopes in TraceUpdate.
const (
	TraceScopeLive  = "live"
	TraceScopeFinal = "final"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type ClientSubmit struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	TSMs      int64       `json:"ts_ms"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
	TSMs      int64       `json:"ts_ms"`
}

type DictationPartial struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	TSMs      int64       `json:"ts_ms"`
}

// MessagePayload is the wire form of one conversation message.
type MessagePayload struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Sender      string `json:"sender"`
	TimestampMs int64  `json:"timestamp_ms"`
	IsEscalated bool   `json:"is_escalated"`
}

// TraceStepPayload is the wire form of one reasoning step.
type TraceStepPayload struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// MemoryItemPayload is the wire form of one working-memory item.
type MemoryItemPayload struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	DateMs     int64   `json:"date_ms"`
	Importance float64 `json:"importance"`
}

type StateChange struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	State     string      `json:"state"`
}

type MessageAppend struct {
	Type      MessageType    `json:"type"`
	SessionID string         `json:"session_id"`
	Message   MessagePayload `json:"message"`
}

type TraceUpdate struct {
	Type      MessageType        `json:"type"`
	SessionID string             `json:"session_id"`
	Scope     string             `json:"scope"`
	Steps     []TraceStepPayload `json:"steps"`
}

type MemoryUpdate struct {
	Type        MessageType         `json:"type"`
	SessionID   string              `json:"session_id"`
	Items       []MemoryItemPayload `json:"items"`
	JustUpdated bool                `json:"just_updated"`
}

type SpeechEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"` // started|finished|unsupported
}

type EscalationRedirect struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Route     string      `json:"route"`
}

type Notice struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes and validates an inbound client payload.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientSubmit:
		var msg ClientSubmit
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_submit")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		switch msg.Action {
		case ActionStartText, ActionStartVoice, ActionStartDictation, ActionEndDictation, ActionStop:
		default:
			return nil, fmt.Errorf("unknown control action %q", msg.Action)
		}
		return msg, nil
	case TypeDictationPartial:
		var msg DictationPartial
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid dictation_partial")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
