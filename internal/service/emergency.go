package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

// EmergencyTrigger raises an SOS for whoever is logged in. It backs the
// hardware button pattern and the quick-action notification.
type EmergencyTrigger struct {
	auth    *AuthService
	sos     *SOSService
	timeout time.Duration
	logger  *zap.Logger
}

// NewEmergencyTrigger wires the trigger. timeout bounds the backend call.
func NewEmergencyTrigger(auth *AuthService, sos *SOSService, timeout time.Duration, logger *zap.Logger) *EmergencyTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EmergencyTrigger{auth: auth, sos: sos, timeout: timeout, logger: logger.Named("emergency")}
}

// Fire triggers an SOS. It returns false when nobody is logged in, an SOS
// is already active, or activation failed.
func (e *EmergencyTrigger) Fire() bool {
	user := e.auth.CurrentUser()
	if user == nil {
		e.logger.Warn("sos pattern ignored: no user logged in")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	event, err := e.sos.TriggerSOS(ctx, user.UserID)
	switch {
	case apperrors.IsCode(err, apperrors.CodeAlreadyActive):
		e.logger.Info("sos already active", zap.String("sos_id", event.SOSID))
		return false
	case err != nil:
		e.logger.Error("sos activation failed", zap.Error(err))
		return false
	}
	e.logger.Info("sos activated from hardware trigger", zap.String("sos_id", event.SOSID))
	return true
}
