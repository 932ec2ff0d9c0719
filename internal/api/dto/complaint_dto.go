package dto

import (
	"time"

	"github.com/spec-kit/raksha/internal/domain"
)

// FileComplaintRequest payload for new complaints.
type FileComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ComplaintResponse renders a complaint for clients.
type ComplaintResponse struct {
	ComplaintID     string                 `json:"complaint_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Timestamp       time.Time              `json:"timestamp"`
	Status          domain.ComplaintStatus `json:"status"`
	StatusDisplay   string                 `json:"status_display"`
	ResolutionNotes *string                `json:"resolution_notes,omitempty"`
	Latitude        *float64               `json:"latitude,omitempty"`
	Longitude       *float64               `json:"longitude,omitempty"`
	Synced          bool                   `json:"synced"`
	SyncRejected    bool                   `json:"sync_rejected,omitempty"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ComplaintID:     c.ComplaintID,
		Title:           c.Title,
		Description:     c.Description,
		Timestamp:       c.Timestamp,
		Status:          c.Status,
		StatusDisplay:   c.Status.Display(),
		ResolutionNotes: c.ResolutionNotes,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		Synced:          c.Synced,
		SyncRejected:    c.SyncRejected,
	}
}
