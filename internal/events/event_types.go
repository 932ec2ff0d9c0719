package events

import (
	"time"

	"github.com/spec-kit/raksha/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSOSTriggered       EventType = "sos_triggered"
	EventSOSLocationUpdated EventType = "sos_location_updated"
	EventSOSResolved        EventType = "sos_resolved"
	EventComplaintFiled     EventType = "complaint_filed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SOSTriggeredPayload payload.
type SOSTriggeredPayload struct {
	Location *domain.LocationFix `json:"location,omitempty"`
	Synced   bool                `json:"synced"`
}

// SOSLocationUpdatedPayload payload.
type SOSLocationUpdatedPayload struct {
	Location domain.LocationFix `json:"location"`
	Points   int                `json:"points"`
}

// SOSResolvedPayload payload.
type SOSResolvedPayload struct {
	DurationSeconds int64  `json:"duration_seconds"`
	Notes           string `json:"notes,omitempty"`
}

// ComplaintFiledPayload payload.
type ComplaintFiledPayload struct {
	Title  string `json:"title"`
	Synced bool   `json:"synced"`
}
