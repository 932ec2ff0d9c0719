package domain

import (
	"strings"
	"time"
)

// SOSStatus enumerates lifecycle states for an emergency episode.
type SOSStatus string

const (
	SOSStatusIdle     SOSStatus = "idle"
	SOSStatusActive   SOSStatus = "active"
	SOSStatusResolved SOSStatus = "resolved"
)

// ParseSOSStatus maps backend strings onto SOSStatus, returning fallback
// for anything unrecognized.
func ParseSOSStatus(raw string, fallback SOSStatus) SOSStatus {
	switch SOSStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case SOSStatusIdle:
		return SOSStatusIdle
	case SOSStatusActive:
		return SOSStatusActive
	case SOSStatusResolved:
		return SOSStatusResolved
	default:
		return fallback
	}
}

// SOSEvent is one emergency episode from activation to resolution.
type SOSEvent struct {
	SOSID           string        `json:"sos_id"`
	UserID          string        `json:"user_id"`
	Status          SOSStatus     `json:"status"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time"`
	LocationHistory []LocationFix `json:"location_history"`
}

// IsActive reports whether the event is the in-progress emergency.
func (s *SOSEvent) IsActive() bool {
	return s != nil && s.Status == SOSStatusActive
}

// AddLocation appends a fix while the event is active. Returns false otherwise.
func (s *SOSEvent) AddLocation(fix LocationFix) bool {
	if !s.IsActive() {
		return false
	}
	s.LocationHistory = append(s.LocationHistory, fix)
	return true
}

// LatestLocation returns the most recent fix or nil.
func (s *SOSEvent) LatestLocation() *LocationFix {
	if s == nil || len(s.LocationHistory) == 0 {
		return nil
	}
	last := s.LocationHistory[len(s.LocationHistory)-1]
	return &last
}

// DurationSeconds is now-start while active and end-start once resolved,
// truncated to whole seconds.
func (s *SOSEvent) DurationSeconds(now time.Time) int64 {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return int64(end.Sub(s.StartTime) / time.Second)
}

// Resolved returns a copy of the event transitioned to Resolved at endTime.
// The receiver is left untouched.
func (s *SOSEvent) Resolved(endTime time.Time) *SOSEvent {
	out := s.Clone()
	out.Status = SOSStatusResolved
	out.EndTime = &endTime
	return out
}

// Clone deep-copies the event so callers never alias manager state.
func (s *SOSEvent) Clone() *SOSEvent {
	if s == nil {
		return nil
	}
	out := *s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	out.LocationHistory = make([]LocationFix, len(s.LocationHistory))
	copy(out.LocationHistory, s.LocationHistory)
	return &out
}
