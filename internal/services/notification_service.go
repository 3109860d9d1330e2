package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/notify"
	"github.com/rs/zerolog"
)

const sendTimeout = 15 * time.Second

// NotificationService delivers caregiver notifications from a bounded queue on a
// single worker. Callers never wait on delivery.
type NotificationService struct {
	Sinks  []notify.Sink
	Logger zerolog.Logger

	mu      sync.RWMutex
	queue   chan models.Notification
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotificationService creates a service whose queue holds queueSize notifications.
func NewNotificationService(queueSize int, sinks []notify.Sink, logger zerolog.Logger) *NotificationService {
	if queueSize < 1 {
		queueSize = 1
	}
	return &NotificationService{
		Sinks:  sinks,
		Logger: logger,
		queue:  make(chan models.Notification, queueSize),
	}
}

// Notify formats and enqueues a message. It returns false when the message was dropped
// because the queue is full or the service is not running.
func (n *NotificationService) Notify(priority, message string) bool {
	notification := notify.New(priority, message)

	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.running {
		n.Logger.Warn().Str("priority", notification.Priority).Msg("Notification service not running, dropping notification")
		metrics.RecordNotification(notification.Priority, "dropped")
		return false
	}

	select {
	case n.queue <- notification:
		return true
	default:
		n.Logger.Warn().Str("priority", notification.Priority).Str("message", notification.Message).Msg("Notification queue full, dropping notification")
		metrics.RecordNotification(notification.Priority, "dropped")
		return false
	}
}

// Start launches the delivery worker.
func (n *NotificationService) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		n.Logger.Warn().Msg("NotificationService is already running")
		return errors.New("notification service is already running")
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	n.running = true

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.runDeliveryLoop()
	}()

	names := make([]string, 0, len(n.Sinks))
	for _, s := range n.Sinks {
		names = append(names, s.Name())
	}
	n.Logger.Info().Strs("sinks", names).Int("queue_size", cap(n.queue)).Msg("NotificationService started successfully")
	return nil
}

// Stop delivers what is already queued, then stops the worker.
func (n *NotificationService) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		n.Logger.Warn().Msg("NotificationService is not running")
		return errors.New("notification service is not running")
	}
	n.running = false
	n.mu.Unlock()

	n.cancel()
	n.wg.Wait()

	n.Logger.Info().Msg("NotificationService stopped successfully")
	return nil
}

func (n *NotificationService) runDeliveryLoop() {
	for {
		select {
		case notification := <-n.queue:
			n.deliver(notification)
		case <-n.ctx.Done():
			n.drain()
			return
		}
	}
}

// drain flushes notifications queued before Stop.
func (n *NotificationService) drain() {
	for {
		select {
		case notification := <-n.queue:
			n.deliver(notification)
		default:
			return
		}
	}
}

func (n *NotificationService) deliver(notification models.Notification) {
	for _, sink := range n.Sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := sink.Send(ctx, notification)
		cancel()

		if err != nil {
			n.Logger.Error().Err(err).Str("sink", sink.Name()).Str("priority", notification.Priority).Msg("Failed to send notification")
			metrics.RecordNotification(notification.Priority, "failed")
			continue
		}
		n.Logger.Info().Str("sink", sink.Name()).Str("priority", notification.Priority).Msg("Notification sent successfully")
		metrics.RecordNotification(notification.Priority, "sent")
	}
}
