package dto

import (
	"time"

	"github.com/spec-kit/raksha/internal/domain"
)

// ResolveSOSRequest payload for resolving the active SOS.
type ResolveSOSRequest struct {
	Notes string `json:"notes"`
}

// SOSResponse renders an SOS event with derived fields.
type SOSResponse struct {
	SOSID           string               `json:"sos_id"`
	UserID          string               `json:"user_id"`
	Status          domain.SOSStatus     `json:"status"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         *time.Time           `json:"end_time,omitempty"`
	DurationSeconds int64                `json:"duration_seconds"`
	LatestLocation  *domain.LocationFix  `json:"latest_location,omitempty"`
	LocationHistory []domain.LocationFix `json:"location_history"`
}

// NewSOSResponse maps a domain event; now is used for the running duration.
func NewSOSResponse(e *domain.SOSEvent, now time.Time) SOSResponse {
	return SOSResponse{
		SOSID:           e.SOSID,
		UserID:          e.UserID,
		Status:          e.Status,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationSeconds: e.DurationSeconds(now),
		LatestLocation:  e.LatestLocation(),
		LocationHistory: e.LocationHistory,
	}
}

// ButtonPressResponse reports detector state after a hardware press.
type ButtonPressResponse struct {
	Listening bool `json:"listening"`
	Count     int  `json:"count"`
}
