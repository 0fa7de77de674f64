package session

import (
	"time"

	"github.com/solace-labs/solace/internal/compose"
)

// CreateRequest defines payload for creating a new session.
type CreateRequest struct {
	UserID string `json:"user_id"`
	Mode   string `json:"mode"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string       `json:"session_id"`
	UserID          string       `json:"user_id"`
	Status          Status       `json:"status"`
	Mode            compose.Mode `json:"mode"`
	StartedAt       time.Time    `json:"started_at"`
	LastActivityAt  time.Time    `json:"last_activity_at"`
	InactivityTTLMS int64        `json:"inactivity_ttl_ms"`
}
