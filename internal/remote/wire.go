package remote

import (
	"strings"
	"time"

	"github.com/spec-kit/raksha/internal/domain"
)

// envelope is the response body shape shared by every endpoint.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Token      string          `json:"token"`
	User       *wireUser       `json:"user"`
	SOS        *wireSOS        `json:"sos"`
	History    []wireSOS       `json:"history"`
	Complaints []wireComplaint `json:"complaints"`
	Complaint  *wireComplaint  `json:"complaint"`
}

type wireUser struct {
	ID        *int64 `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login"`
	IsActive  *bool  `json:"is_active"`
}

type wireLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
	Accuracy  *float64 `json:"accuracy"`
}

type wireSOS struct {
	SOSID           string         `json:"sos_id"`
	UserID          string         `json:"user_id"`
	Status          string         `json:"status"`
	StartTime       string         `json:"start_time"`
	EndTime         string         `json:"end_time"`
	LocationHistory []wireLocation `json:"location_history"`
}

type wireComplaint struct {
	ComplaintID     string   `json:"complaint_id"`
	UserID          string   `json:"user_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Timestamp       string   `json:"timestamp"`
	Status          string   `json:"status"`
	ResolutionNotes *string  `json:"resolution_notes"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// parseTime accepts RFC 3339 and the naive ISO forms some backends emit.
func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func optionalTime(raw string) *time.Time {
	if t, ok := parseTime(raw); ok {
		return &t
	}
	return nil
}

func (w wireUser) toDomain() domain.User {
	u := domain.User{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Email:     w.Email,
		Phone:     w.Phone,
		Role:      w.Role,
		CreatedAt: optionalTime(w.CreatedAt),
		LastLogin: optionalTime(w.LastLogin),
		IsActive:  true,
	}
	if w.IsActive != nil {
		u.IsActive = *w.IsActive
	}
	return u
}

func (w wireLocation) toDomain(now time.Time) (domain.LocationFix, bool) {
	if w.Latitude == nil || w.Longitude == nil {
		return domain.LocationFix{}, false
	}
	ts, ok := parseTime(w.Timestamp)
	if !ok {
		ts = now
	}
	fix := domain.LocationFix{Latitude: *w.Latitude, Longitude: *w.Longitude, Timestamp: ts, Accuracy: w.Accuracy}
	return fix, fix.Valid()
}

func (w wireSOS) toDomain(now time.Time) domain.SOSEvent {
	start, ok := parseTime(w.StartTime)
	if !ok {
		start = now
	}
	event := domain.SOSEvent{
		SOSID:     w.SOSID,
		UserID:    w.UserID,
		Status:    domain.ParseSOSStatus(w.Status, domain.SOSStatusResolved),
		StartTime: start,
		EndTime:   optionalTime(w.EndTime),
	}
	event.LocationHistory = make([]domain.LocationFix, 0, len(w.LocationHistory))
	for _, loc := range w.LocationHistory {
		if fix, ok := loc.toDomain(now); ok {
			event.LocationHistory = append(event.LocationHistory, fix)
		}
	}
	return event
}

func (w wireComplaint) toDomain(now time.Time) domain.Complaint {
	ts, ok := parseTime(w.Timestamp)
	if !ok {
		ts = now
	}
	return domain.Complaint{
		ComplaintID:     w.ComplaintID,
		UserID:          w.UserID,
		Title:           w.Title,
		Description:     w.Description,
		Timestamp:       ts,
		Status:          domain.ParseComplaintStatus(w.Status),
		ResolutionNotes: w.ResolutionNotes,
		Latitude:        w.Latitude,
		Longitude:       w.Longitude,
		Synced:          true,
	}
}
