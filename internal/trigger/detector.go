package trigger

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/platform"
)

const confirmVibration = 500 * time.Millisecond

// Config tunes the press pattern.
type Config struct {
	Threshold int
	Window    time.Duration
}

// DefaultConfig is five presses with at most three seconds between them.
func DefaultConfig() Config {
	return Config{Threshold: 5, Window: 3 * time.Second}
}

// Detector recognises a rapid press pattern on a hardware button and
// invokes a callback once per completed pattern.
type Detector struct {
	mu      sync.Mutex
	cfg     Config
	clock   clock.Clock
	haptics platform.Haptics
	logger  *zap.Logger

	listening  bool
	callback   func()
	count      int
	lastPress  time.Time
	timer      *clock.Timer
	generation uint64
}

// NewDetector builds a detector. Zero config fields take the defaults.
func NewDetector(cfg Config, clk clock.Clock, haptics platform.Haptics, logger *zap.Logger) *Detector {
	def := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if clk == nil {
		clk = clock.New()
	}
	if haptics == nil {
		haptics = platform.NoopHaptics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		cfg:     cfg,
		clock:   clk,
		haptics: haptics,
		logger:  logger.Named("trigger"),
	}
}

// StartListening registers the callback. It returns false if the detector
// is already listening.
func (d *Detector) StartListening(callback func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listening {
		return false
	}
	d.listening = true
	d.callback = callback
	d.logger.Info("hardware trigger armed", zap.Int("threshold", d.cfg.Threshold), zap.Duration("window", d.cfg.Window))
	return true
}

// StopListening disarms the detector and drops any partial sequence.
func (d *Detector) StopListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.listening {
		return
	}
	d.listening = false
	d.callback = nil
	d.resetLocked()
}

// IsListening reports whether presses are being counted.
func (d *Detector) IsListening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// Count returns the presses counted in the current sequence.
func (d *Detector) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Press records one button press. The callback runs on the caller's
// goroutine after the detector lock is released.
func (d *Detector) Press() {
	d.mu.Lock()
	if !d.listening {
		d.mu.Unlock()
		return
	}

	now := d.clock.Now()
	if d.count == 0 || now.Sub(d.lastPress) > d.cfg.Window {
		if d.count > 0 {
			d.logger.Debug("press too slow, starting over")
		}
		d.count = 1
	} else {
		d.count++
	}
	d.lastPress = now
	d.logger.Debug("button press", zap.Int("count", d.count), zap.Int("threshold", d.cfg.Threshold))

	if d.count < d.cfg.Threshold {
		d.armLocked()
		d.mu.Unlock()
		return
	}

	callback := d.callback
	d.resetLocked()
	d.mu.Unlock()

	d.logger.Info("sos pattern detected")
	if err := d.haptics.Vibrate(confirmVibration); err != nil {
		d.logger.Warn("confirm vibration failed", zap.Error(err))
	}
	if callback != nil {
		callback()
	}
}

func (d *Detector) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	gen := d.generation
	d.timer = d.clock.AfterFunc(d.cfg.Window, func() { d.expire(gen) })
}

func (d *Detector) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return
	}
	d.count = 0
	d.lastPress = time.Time{}
	d.timer = nil
}

// resetLocked cancels any pending timer. Bumping the generation makes a
// timer that already fired but has not taken the lock yet a no-op.
func (d *Detector) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	d.count = 0
	d.lastPress = time.Time{}
}
