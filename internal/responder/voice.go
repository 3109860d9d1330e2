package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/chatlog"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/rs/zerolog"
)

var (
	voiceWeatherWords  = []string{"weather", "temperature", "forecast"}
	voiceDistanceWords = []string{"distance", "measure", "pickup", "check pill"}
)

// Notifier queues a caregiver notification without blocking.
type Notifier interface {
	Notify(priority, message string) bool
}

// ConnectionState reports whether the brain node answered the last heartbeat.
type ConnectionState interface {
	Connected() bool
}

// VoiceRouter handles transcribed voice commands. Branches are tried in order and
// only the first match runs; anything unmatched goes to the brain or the local responder.
type VoiceRouter struct {
	Hardware        hardware.HardwareInterface
	Weather         weather.Fetcher
	Chat            *chatlog.Log
	Notifier        Notifier
	Brain           brainclient.BrainAPI
	Connection      ConnectionState
	Local           *LocalResponder
	DefaultCity     string
	Units           string
	PickupThreshold float64
	Logger          zerolog.Logger
}

// Handle runs command and returns the spoken reply. Both the command and the reply
// are appended to the chat log.
func (v *VoiceRouter) Handle(ctx context.Context, command string) string {
	v.Logger.Info().Str("command", command).Msg("Received voice command")
	v.Chat.Append(constants.ChatTypeUser, constants.SenderVoice, command)

	reply := v.route(ctx, command)

	v.Chat.Append(constants.ChatTypeBot, constants.SenderBot, reply)
	v.Logger.Info().Str("response", reply).Msg("Voice command response")
	return reply
}

func (v *VoiceRouter) route(ctx context.Context, command string) string {
	lower := strings.ToLower(command)
	isDispense := strings.Contains(lower, "dispense")

	switch {
	case containsAny(lower, voiceWeatherWords):
		report, err := v.Weather.Current(ctx, spokenCity(command, v.DefaultCity), v.Units)
		if err != nil {
			return fmt.Sprintf("Sorry, I couldn't get weather information: %s", report.Message)
		}
		return describeWeather(report)

	case containsAny(lower, servoWords):
		servo, direction := spokenServo(lower)
		if _, err := v.Hardware.Rotate(servo, direction); err != nil {
			return fmt.Sprintf("Failed to rotate servo: %v", err)
		}
		return fmt.Sprintf("Servo %d rotated 90 degrees %s", servo, direction)

	case isDispense && containsAny(lower, []string{"paracetamol", "slot 1", "one"}):
		return v.dispense(1, "Paracetamol")

	case isDispense && containsAny(lower, []string{"antibiotic", "slot 2", "two"}):
		return v.dispense(2, "Antibiotic")

	case containsAny(lower, voiceDistanceWords):
		distance := v.Hardware.MeasureDistance()
		seen := "not detected"
		if distance < v.threshold() {
			seen = "detected"
		}
		return fmt.Sprintf("Pill pickup %s. Distance is %v cm.", seen, distance)

	case containsAny(lower, helpWords):
		v.Chat.Error(constants.SenderSystem, "EMERGENCY ALERT TRIGGERED VIA VOICE")
		v.Notifier.Notify(constants.PriorityEmergency, "EMERGENCY ALERT triggered by voice command from patient.")
		v.Logger.Error().Msg("EMERGENCY ALERT triggered by voice command")
		return "Emergency alert triggered. Help has been notified."
	}

	if v.Connection.Connected() {
		text, err := v.Brain.Chat(ctx, models.ChatRequest{Message: command})
		if err == nil {
			return text
		}
		v.Logger.Warn().Err(err).Msg("Brain chat for voice command failed, answering locally")
	}
	return v.Local.Respond(ctx, command)
}

func (v *VoiceRouter) dispense(slot int, medication string) string {
	if err := v.Hardware.Dispense(slot); err != nil {
		v.Logger.Error().Err(err).Int("slot", slot).Msg("Voice dispense failed")
		return fmt.Sprintf("Failed to dispense %s: %v", medication, err)
	}
	return fmt.Sprintf("Dispensing %s from compartment %d.", medication, slot)
}

func (v *VoiceRouter) threshold() float64 {
	if v.PickupThreshold > 0 {
		return v.PickupThreshold
	}
	return constants.DefaultPickupThresholdCM
}
