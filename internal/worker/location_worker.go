package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/events"
)

// LocationSyncer is the SOS service surface the worker drives.
type LocationSyncer interface {
	SyncLocation(ctx context.Context) (bool, error)
	ActiveSOS() *domain.SOSEvent
}

// LocationWorker records the provider's latest fix on a fixed interval
// while an SOS is active.
type LocationWorker struct {
	// syncMu serializes Reconcile so the last caller decides from the
	// latest SOS state.
	syncMu   sync.Mutex
	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	running  bool
	interval time.Duration
	syncer   LocationSyncer
	logger   *zap.Logger
}

// NewLocationWorker builds an idle worker.
func NewLocationWorker(syncer LocationSyncer, interval time.Duration, logger *zap.Logger) *LocationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < time.Second {
		interval = time.Second
	}
	logger = logger.Named("location_worker")
	cl := cronLogger{logger.Sugar()}
	return &LocationWorker{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		interval: interval,
		syncer:   syncer,
		logger:   logger,
	}
}

// Register keeps the worker in step with the SOS lifecycle. Events may
// arrive after a later transition has already happened, so both handlers
// reconcile against the current state instead of the event type.
func (w *LocationWorker) Register(dispatcher events.Dispatcher) {
	reconcile := func(context.Context, events.Event) error {
		return w.Reconcile()
	}
	dispatcher.Subscribe(events.EventSOSTriggered, reconcile)
	dispatcher.Subscribe(events.EventSOSResolved, reconcile)
}

// StartIfActive starts the worker when an SOS survived a restart.
func (w *LocationWorker) StartIfActive() error {
	return w.Reconcile()
}

// Reconcile runs the tick while an SOS is active and stops it otherwise.
func (w *LocationWorker) Reconcile() error {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()
	if w.syncer.ActiveSOS() == nil {
		w.Stop()
		return nil
	}
	return w.Start()
}

// Start schedules the tick. Calling it while running is a no-op.
func (w *LocationWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	id, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		w.Tick(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule location tick: %w", err)
	}
	w.entry = id
	w.running = true
	w.cron.Start()
	w.logger.Info("location worker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop unschedules the tick and waits for a tick in progress.
func (w *LocationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cron.Remove(w.entry)
	w.running = false
	done := w.cron.Stop()
	w.mu.Unlock()

	<-done.Done()
	w.logger.Info("location worker stopped")
}

// Running reports whether the tick is scheduled.
func (w *LocationWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Tick performs one location sync.
func (w *LocationWorker) Tick(ctx context.Context) {
	recorded, err := w.syncer.SyncLocation(ctx)
	if err != nil {
		w.logger.Warn("location sync failed", zap.Error(err))
		return
	}
	if recorded {
		w.logger.Debug("location recorded")
	}
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
