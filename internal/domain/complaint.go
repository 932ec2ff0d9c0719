package domain

import (
	"strings"
	"time"
)

// ComplaintStatus enumerates review states. Only the backend advances them.
type ComplaintStatus string

const (
	ComplaintStatusPending     ComplaintStatus = "pending"
	ComplaintStatusUnderReview ComplaintStatus = "under_review"
	ComplaintStatusResolved    ComplaintStatus = "resolved"
	ComplaintStatusClosed      ComplaintStatus = "closed"
)

// ParseComplaintStatus falls back to Pending for unrecognized values.
func ParseComplaintStatus(raw string) ComplaintStatus {
	switch ComplaintStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ComplaintStatusUnderReview:
		return ComplaintStatusUnderReview
	case ComplaintStatusResolved:
		return ComplaintStatusResolved
	case ComplaintStatusClosed:
		return ComplaintStatusClosed
	default:
		return ComplaintStatusPending
	}
}

// Display renders the status for people, e.g. "Under Review".
func (s ComplaintStatus) Display() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Complaint is a user-filed report tracked by the backend.
type Complaint struct {
	ComplaintID     string          `json:"complaint_id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Timestamp       time.Time       `json:"timestamp"`
	Status          ComplaintStatus `json:"status"`
	ResolutionNotes *string         `json:"resolution_notes"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`

	// Synced is false until the backend has acknowledged the complaint.
	Synced bool `json:"synced"`
	// SyncRejected marks a complaint the backend refused outright. It stays
	// in the local cache but is not pushed again.
	SyncRejected bool `json:"sync_rejected,omitempty"`
}
