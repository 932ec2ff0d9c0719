package platform

import "time"

// Haptics vibrates the device.
type Haptics interface {
	Vibrate(d time.Duration) error
}

// NoopHaptics does nothing; hosts without a vibrator use it.
type NoopHaptics struct{}

func (NoopHaptics) Vibrate(time.Duration) error { return nil }
