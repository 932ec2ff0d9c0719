package platform

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/spec-kit/raksha/internal/location"
)

// ErrLocationUnavailable is returned by sources with no hardware behind them.
var ErrLocationUnavailable = errors.New("location source unavailable")

// UnavailableSource never starts.
type UnavailableSource struct{}

func (UnavailableSource) Start(func(location.Reading)) error { return ErrLocationUnavailable }

func (UnavailableSource) Stop() error { return nil }

// FixedSource delivers the same coordinate on every interval. It is used on
// simulators and desktop hosts that know where they are.
type FixedSource struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Interval  time.Duration
	Clock     clock.Clock

	mu   sync.Mutex
	stop chan struct{}
}

// Start delivers one reading right away and then one per interval.
func (s *FixedSource) Start(deliver func(location.Reading)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return errors.New("fixed source already started")
	}
	c := s.Clock
	if c == nil {
		c = clock.New()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	stop := make(chan struct{})
	s.stop = stop
	ticker := c.Ticker(interval)
	go func() {
		defer ticker.Stop()
		deliver(s.reading())
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				deliver(s.reading())
			}
		}
	}()
	return nil
}

// Stop signals the delivery loop and returns without waiting for it.
func (s *FixedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	return nil
}

func (s *FixedSource) reading() location.Reading {
	lat, lon := s.Latitude, s.Longitude
	r := location.Reading{Latitude: &lat, Longitude: &lon}
	if s.Accuracy != nil {
		accuracy := *s.Accuracy
		r.Accuracy = &accuracy
	}
	return r
}
