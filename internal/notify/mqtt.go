package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
)

// Publisher is satisfied by pkg/mqtt.MqttService.
type Publisher interface {
	Publish(topic string, qos byte, payload []byte) error
}

// MQTTSink mirrors notifications onto a broker topic for caregiver dashboards.
type MQTTSink struct {
	publisher Publisher
	topic     string
	qos       byte
	Logger    zerolog.Logger
}

// NewMQTTSink creates a sink publishing to topic.
func NewMQTTSink(publisher Publisher, topic string, qos int, logger zerolog.Logger) *MQTTSink {
	return &MQTTSink{publisher: publisher, topic: topic, qos: byte(qos), Logger: logger}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}
	if err := s.publisher.Publish(s.topic, s.qos, payload); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", s.topic, err)
	}
	s.Logger.Debug().Str("topic", s.topic).Msg("Notification published")
	return nil
}
