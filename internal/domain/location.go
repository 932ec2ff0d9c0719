package domain

import (
	"fmt"
	"time"
)

// LocationFix is a single position reading. Never mutated after creation.
type LocationFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy"`
}

// Valid reports whether the coordinates are in range.
func (l LocationFix) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Coordinates formats the fix as "lat, lon" with six decimals.
func (l LocationFix) Coordinates() string {
	return fmt.Sprintf("%.6f, %.6f", l.Latitude, l.Longitude)
}

// Equal reports whether two fixes describe the same reading.
func (l LocationFix) Equal(other LocationFix) bool {
	if l.Latitude != other.Latitude || l.Longitude != other.Longitude || !l.Timestamp.Equal(other.Timestamp) {
		return false
	}
	switch {
	case l.Accuracy == nil && other.Accuracy == nil:
		return true
	case l.Accuracy == nil || other.Accuracy == nil:
		return false
	default:
		return *l.Accuracy == *other.Accuracy
	}
}
