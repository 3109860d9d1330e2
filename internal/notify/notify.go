package notify

import (
	"context"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
)

// Sink delivers a formatted notification to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, n models.Notification) error
}

// Format prefixes message with the marker for priority. Unknown priorities are informational.
func Format(priority, message string) string {
	switch priority {
	case constants.PriorityEmergency:
		return "🚨 EMERGENCY ALERT: " + message
	case constants.PriorityWarning:
		return "⚠️ WARNING: " + message
	default:
		return "ℹ️ " + message
	}
}

// New builds a notification stamped with the current time.
func New(priority, message string) models.Notification {
	if priority == "" {
		priority = constants.PriorityInfo
	}
	return models.Notification{
		Priority:  priority,
		Message:   Format(priority, message),
		CreatedAt: time.Now(),
	}
}

// LogSink records would-be notifications when no messaging backend is enabled.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Send(_ context.Context, n models.Notification) error {
	s.Logger.Info().Str("priority", n.Priority).Str("message", n.Message).Msg("Notifications disabled. Would have sent")
	return nil
}
