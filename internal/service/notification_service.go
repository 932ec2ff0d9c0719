package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/events"
	"github.com/spec-kit/raksha/internal/platform"
)

// NotificationService turns domain events into user-facing notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       platform.NotificationSink
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink platform.NotificationSink, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger.Named("notifications"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || n.sink == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSOSTriggered, n.handleSOSTriggered)
	n.dispatcher.Subscribe(events.EventSOSResolved, n.handleSOSResolved)
	n.dispatcher.Subscribe(events.EventComplaintFiled, n.handleComplaintFiled)
}

func (n *NotificationService) handleSOSTriggered(ctx context.Context, event events.Event) error {
	message := "Emergency services notified"
	if payload, ok := event.Payload.(events.SOSTriggeredPayload); ok {
		if !payload.Synced {
			message = "SOS saved on this device - backend unreachable"
		}
		if payload.Location != nil {
			message += " at " + payload.Location.Coordinates()
		}
	}
	n.notify(ctx, event, "SOS Activated", message)
	return nil
}

func (n *NotificationService) handleSOSResolved(ctx context.Context, event events.Event) error {
	message := "Your SOS has been resolved"
	if payload, ok := event.Payload.(events.SOSResolvedPayload); ok {
		message = fmt.Sprintf("Your SOS has been resolved after %s", formatDuration(payload.DurationSeconds))
	}
	n.notify(ctx, event, "SOS Resolved", message)
	return nil
}

func (n *NotificationService) handleComplaintFiled(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ComplaintFiledPayload)
	message := "Complaint filed successfully"
	if !payload.Synced {
		message = "Complaint saved locally - will sync later"
	}
	if payload.Title != "" {
		message = fmt.Sprintf("%s: %s", message, payload.Title)
	}
	n.notify(ctx, event, "Complaint Filed", message)
	return nil
}

func (n *NotificationService) notify(ctx context.Context, event events.Event, title, message string) {
	if err := n.sink.Notify(ctx, title, message); err != nil {
		n.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

// formatDuration renders seconds as "1h 2m 3s", dropping leading zero units.
func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, sec := seconds/3600, (seconds%3600)/60, seconds%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
