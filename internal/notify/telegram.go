package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/zima/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ErrTelegramNotConfigured is returned when the bot token or chat id is missing.
var ErrTelegramNotConfigured = errors.New("telegram bot token or chat id not configured")

// BotSender is the part of the bot API the sink uses.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends notifications to a caregiver chat or channel.
type TelegramSink struct {
	bot    BotSender
	chatID string
	Logger zerolog.Logger
}

// NewTelegramSink connects to the bot API. The constructor calls getMe, so an invalid
// token fails here rather than on the first alert.
func NewTelegramSink(token, chatID, endpoint string, timeout time.Duration, logger zerolog.Logger) (*TelegramSink, error) {
	if token == "" || chatID == "" {
		return nil, ErrTelegramNotConfigured
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		logTelegramError(logger, err, chatID)
		return nil, fmt.Errorf("telegram connection test failed: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram connection successful")
	return NewTelegramSinkWithBot(bot, chatID, logger), nil
}

// NewTelegramSinkWithBot wraps an existing bot.
func NewTelegramSinkWithBot(bot BotSender, chatID string, logger zerolog.Logger) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID, Logger: logger}
}

func (s *TelegramSink) Name() string { return "telegram" }

// Send posts n to the configured chat. Numeric ids address users and groups,
// anything else is treated as a @channel name.
func (s *TelegramSink) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(s.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, n.Message)
	} else {
		msg = tgbotapi.NewMessageToChannel(s.chatID, n.Message)
	}

	if _, err := s.bot.Send(msg); err != nil {
		logTelegramError(s.Logger, err, s.chatID)
		return fmt.Errorf("telegram send: %w", err)
	}
	s.Logger.Info().Str("priority", n.Priority).Msg("Telegram notification sent successfully")
	return nil
}

func logTelegramError(logger zerolog.Logger, err error, chatID string) {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "unauthorized") || strings.Contains(text, "forbidden"):
		logger.Error().Err(err).Msg("Telegram rejected the bot token. Check it with BotFather")
	case strings.Contains(text, "chat not found"):
		logger.Error().Err(err).Str("chat_id", chatID).
			Msg("Telegram chat not found. The user must start the bot, or the bot must be added to the group or made channel admin")
	default:
		logger.Error().Err(err).Msg("Failed to send Telegram notification")
	}
}
