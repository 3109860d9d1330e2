package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "🚨 EMERGENCY ALERT: fall detected", Format(constants.PriorityEmergency, "fall detected"))
	assert.Equal(t, "⚠️ WARNING: dose missed", Format(constants.PriorityWarning, "dose missed"))
	assert.Equal(t, "ℹ️ all good", Format(constants.PriorityInfo, "all good"))
	assert.Equal(t, "ℹ️ all good", Format("normal", "all good"))
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramSink_ChatAddressing(t *testing.T) {
	bot := &fakeBot{}
	n := New(constants.PriorityWarning, "dose missed")

	require.NoError(t, NewTelegramSinkWithBot(bot, "123456", zerolog.Nop()).Send(context.Background(), n))
	require.NoError(t, NewTelegramSinkWithBot(bot, "@caregivers", zerolog.Nop()).Send(context.Background(), n))

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(123456), bot.sent[0].ChatID)
	assert.Equal(t, "@caregivers", bot.sent[1].ChannelUsername)
	assert.Equal(t, "⚠️ WARNING: dose missed", bot.sent[1].Text)
}

func TestTelegramSink_Error(t *testing.T) {
	bot := &fakeBot{err: errors.New("Bad Request: chat not found")}
	err := NewTelegramSinkWithBot(bot, "42", zerolog.Nop()).Send(context.Background(), New(constants.PriorityInfo, "x"))
	assert.Error(t, err)
}

func TestNewTelegramSink_NotConfigured(t *testing.T) {
	_, err := NewTelegramSink("", "", "", 0, zerolog.Nop())
	assert.ErrorIs(t, err, ErrTelegramNotConfigured)
}

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
}

func (f *fakePublisher) Publish(topic string, qos byte, payload []byte) error {
	f.topic, f.qos, f.payload = topic, qos, payload
	return nil
}

func TestMQTTSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "zima/alerts", 1, zerolog.Nop())

	require.NoError(t, sink.Send(context.Background(), New(constants.PriorityEmergency, "help")))
	assert.Equal(t, "zima/alerts", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	var got models.Notification
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, constants.PriorityEmergency, got.Priority)
	assert.Equal(t, "🚨 EMERGENCY ALERT: help", got.Message)
}
