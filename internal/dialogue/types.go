package dialogue

import "time"

// State is the turn lifecycle position. Only the engine transitions it.
type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateThinking   State = "thinking"
	StateEscalated  State = "escalated"
	StateResponding State = "responding"
	StateSpeaking   State = "speaking"
)

// CaptureMode distinguishes typed input from simulated voice capture.
type CaptureMode string

const (
	CaptureText  CaptureMode = "text"
	CaptureVoice CaptureMode = "voice"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderOperator  Sender = "human-operator"
)

// Message is one conversation entry. Immutable once created; the list is
// append-only and ordered by creation.
type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
	IsEscalated bool      `json:"is_escalated"`
}
