// Package adapter defines the boundary for publishing answer notifications
// to downstream systems.
//
// The session owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContractVersion is the version of the AnswerCompletedEvent shape.
const ContractVersion = "1.0.0"

// EventTypeAnswerCompleted is the EventType of every published event.
const EventTypeAnswerCompleted = "answer_completed"

// AnswerCompletedEvent is the payload published after an answer has been
// rendered.
type AnswerCompletedEvent struct {
	ContractVersion string   `json:"contract_version"`
	EventType       string   `json:"event_type"` // always "answer_completed"
	SessionID       string   `json:"session_id"`
	QueryID         string   `json:"query_id"`
	Prompt          string   `json:"prompt"`
	AnswerLength    int      `json:"answer_length"`
	Segments        []string `json:"segments"`
	Tokens          int      `json:"tokens"`
	Done            bool     `json:"done"`
	ArchivePath     string   `json:"archive_path,omitempty"`
	Timestamp       string   `json:"timestamp"` // RFC 3339
	DurationMs      int64    `json:"duration_ms"`
}

// NewAnswerCompletedEvent fills in the contract fields and a fresh query id.
func NewAnswerCompletedEvent(sessionID, prompt string, at time.Time) *AnswerCompletedEvent {
	return &AnswerCompletedEvent{
		ContractVersion: ContractVersion,
		EventType:       EventTypeAnswerCompleted,
		SessionID:       sessionID,
		QueryID:         uuid.NewString(),
		Prompt:          prompt,
		Timestamp:       at.UTC().Format(time.RFC3339),
	}
}

// Adapter publishes answer events to a downstream system.
type Adapter interface {
	// Publish sends an event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *AnswerCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
