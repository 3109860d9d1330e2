package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/rs/zerolog"
)

const offlineReply = "I'm currently operating in offline mode with limited capabilities. I can help you dispense medication, check pill pickup, get weather information, or control servo motors."

var (
	weatherWords   = []string{"weather", "temperature", "forecast", "rain", "sunny", "cloudy"}
	servoWords     = []string{"rotate", "turn", "servo", "motor"}
	painWords      = []string{"headache", "pain", "hurt", "head", "ache"}
	feverWords     = []string{"fever", "temperature", "hot", "cold"}
	infectionWords = []string{"infection", "antibiotic", "bacteria"}
	dispenseWords  = []string{"dispense", "give", "take"}
	helpWords      = []string{"help", "emergency"}

	cityStopWords = []string{"weather", "in", "the", "what's", "how's"}
)

// LocalResponder answers chat messages on the hardware node when the brain node cannot.
// It only ever acts on the weather service and the servos; dispensing is suggested, not performed.
type LocalResponder struct {
	Hardware    hardware.HardwareInterface
	Weather     weather.Fetcher
	DefaultCity string
	Units       string
	Logger      zerolog.Logger
}

// Respond returns a canned or locally computed reply for text.
func (l *LocalResponder) Respond(ctx context.Context, text string) string {
	lower := strings.ToLower(text)

	if containsAny(lower, weatherWords) {
		report, err := l.Weather.Current(ctx, spokenCity(text, l.DefaultCity), l.Units)
		if err != nil {
			return fmt.Sprintf("Sorry, I couldn't get weather information: %s", report.Message)
		}
		return fmt.Sprintf("%s. Humidity: %d%%", describeWeather(report), report.Humidity)
	}

	if containsAny(lower, servoWords) {
		servo, direction := spokenServo(lower)
		position, err := l.Hardware.Rotate(servo, direction)
		if err != nil {
			return fmt.Sprintf("Failed to rotate servo: %v", err)
		}
		return fmt.Sprintf("Servo %d rotated 90° %s. New position: %d°", servo, direction, position)
	}

	switch {
	case containsAny(lower, painWords):
		return "For headaches, I recommend taking Paracetamol from slot 1. Would you like me to dispense it for you?"
	case containsAny(lower, feverWords):
		return "If you have a fever, Paracetamol from slot 1 can help reduce it. Would you like me to dispense it?"
	case containsAny(lower, infectionWords):
		return "The Antibiotic in slot 2 is for bacterial infections and should be taken with food. Would you like me to dispense it?"
	case containsAny(lower, dispenseWords):
		if containsAny(lower, []string{"paracetamol", "slot 1", "1"}) {
			return "Dispensing Paracetamol from slot 1. Please take it with water."
		}
		if containsAny(lower, []string{"antibiotic", "slot 2", "2"}) {
			return "Dispensing Antibiotic from slot 2. Remember to take it with food."
		}
	case containsAny(lower, helpWords):
		return "If this is a medical emergency, please contact emergency services immediately."
	}

	return offlineReply
}

// spokenCity picks the first word that is not filler, keeping the caller's casing.
func spokenCity(text, fallback string) string {
	for _, word := range strings.Fields(text) {
		if !contains(cityStopWords, strings.ToLower(word)) {
			return word
		}
	}
	return fallback
}

// spokenServo reads the servo number and direction from a lowercased command.
func spokenServo(lower string) (int, string) {
	servo, direction := 1, constants.DirectionClockwise
	if containsAny(lower, []string{"2", "two"}) {
		servo = 2
	}
	if containsAny(lower, []string{"counter", "anti", "left"}) {
		direction = constants.DirectionCounterclockwise
	}
	return servo, direction
}

func describeWeather(r models.WeatherReport) string {
	return fmt.Sprintf("The weather in %s is %v%s with %s", r.City, r.Temperature, weather.TemperatureUnit(r.Units), r.Description)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
