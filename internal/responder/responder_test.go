package responder

import (
	"context"
	"errors"
	"testing"

	"github.com/benmeehan/zima/internal/chatlog"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/mocks"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var paris = models.WeatherReport{
	Success:     true,
	City:        "Paris",
	Temperature: 18.5,
	Humidity:    60,
	Description: "light rain",
	Units:       "metric",
}

func newLocal(hw *mocks.MockHardware, wx *mocks.MockWeather) *LocalResponder {
	return &LocalResponder{Hardware: hw, Weather: wx, DefaultCity: "London", Units: "metric", Logger: zerolog.Nop()}
}

func TestLocalResponder_Weather(t *testing.T) {
	wx := &mocks.MockWeather{}
	wx.On("Current", mock.Anything, "Paris", "metric").Return(paris, nil)

	got := newLocal(&mocks.MockHardware{}, wx).Respond(context.Background(), "Paris weather please")
	assert.Equal(t, "The weather in Paris is 18.5°C with light rain. Humidity: 60%", got)
}

func TestLocalResponder_WeatherFailure(t *testing.T) {
	wx := &mocks.MockWeather{}
	wx.On("Current", mock.Anything, mock.Anything, "metric").
		Return(models.WeatherReport{Message: "Please set weather.api_key in the configuration"}, weather.ErrNoAPIKey)

	got := newLocal(&mocks.MockHardware{}, wx).Respond(context.Background(), "what's the weather")
	assert.Equal(t, "Sorry, I couldn't get weather information: Please set weather.api_key in the configuration", got)
}

func TestLocalResponder_Servo(t *testing.T) {
	hw := &mocks.MockHardware{}
	hw.On("Rotate", 2, constants.DirectionCounterclockwise).Return(270, nil)

	got := newLocal(hw, &mocks.MockWeather{}).Respond(context.Background(), "turn servo two to the left")
	assert.Equal(t, "Servo 2 rotated 90° counterclockwise. New position: 270°", got)

	hw.On("Rotate", 1, constants.DirectionClockwise).Return(0, hardware.ErrHardware)
	got = newLocal(hw, &mocks.MockWeather{}).Respond(context.Background(), "rotate the motor")
	assert.Equal(t, "Failed to rotate servo: hardware error", got)
}

func TestLocalResponder_CannedReplies(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"I have a headache", "For headaches, I recommend taking Paracetamol from slot 1. Would you like me to dispense it for you?"},
		{"I feel hot", "If you have a fever, Paracetamol from slot 1 can help reduce it. Would you like me to dispense it?"},
		{"bacteria everywhere", "The Antibiotic in slot 2 is for bacterial infections and should be taken with food. Would you like me to dispense it?"},
		{"dispense paracetamol", "Dispensing Paracetamol from slot 1. Please take it with water."},
		{"give me slot 2", "Dispensing Antibiotic from slot 2. Remember to take it with food."},
		{"help", "If this is a medical emergency, please contact emergency services immediately."},
		{"good morning", offlineReply},
		{"give me something", offlineReply},
	}

	l := newLocal(&mocks.MockHardware{}, &mocks.MockWeather{})
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Respond(context.Background(), tt.input))
		})
	}
}

type voiceFixture struct {
	hw     *mocks.MockHardware
	wx     *mocks.MockWeather
	brain  *mocks.MockBrainAPI
	notify *mocks.MockNotifier
	conn   *mocks.MockConnection
	chat   *chatlog.Log
	router *VoiceRouter
}

func newVoiceFixture(connected bool) *voiceFixture {
	f := &voiceFixture{
		hw:     &mocks.MockHardware{},
		wx:     &mocks.MockWeather{},
		brain:  &mocks.MockBrainAPI{},
		notify: &mocks.MockNotifier{},
		conn:   mocks.NewMockConnection(connected),
		chat:   chatlog.New(),
	}
	f.router = &VoiceRouter{
		Hardware:    f.hw,
		Weather:     f.wx,
		Chat:        f.chat,
		Notifier:    f.notify,
		Brain:       f.brain,
		Connection:  f.conn,
		Local:       newLocal(f.hw, f.wx),
		DefaultCity: "London",
		Units:       "metric",
		Logger:      zerolog.Nop(),
	}
	return f
}

func TestVoiceRouter_LogsCommandAndReply(t *testing.T) {
	f := newVoiceFixture(false)
	f.wx.On("Current", mock.Anything, "Paris", "metric").Return(paris, nil)

	got := f.router.Handle(context.Background(), "weather in Paris")
	assert.Equal(t, "The weather in Paris is 18.5°C with light rain", got)

	entries := f.chat.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, constants.SenderVoice, entries[0].Sender)
	assert.Equal(t, constants.ChatTypeUser, entries[0].Type)
	assert.Equal(t, constants.SenderBot, entries[1].Sender)
	assert.Equal(t, got, entries[1].Message)
}

func TestVoiceRouter_Branches(t *testing.T) {
	t.Run("servo", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("Rotate", 1, constants.DirectionClockwise).Return(90, nil)
		assert.Equal(t, "Servo 1 rotated 90 degrees clockwise", f.router.Handle(context.Background(), "rotate servo"))
	})

	t.Run("dispense one", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("Dispense", 1).Return(nil)
		assert.Equal(t, "Dispensing Paracetamol from compartment 1.", f.router.Handle(context.Background(), "dispense paracetamol"))
		f.hw.AssertCalled(t, "Dispense", 1)
	})

	t.Run("dispense two", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("Dispense", 2).Return(nil)
		assert.Equal(t, "Dispensing Antibiotic from compartment 2.", f.router.Handle(context.Background(), "please dispense the antibiotic"))
	})

	t.Run("dispense failure", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("Dispense", 2).Return(errors.New("stuck"))
		assert.Equal(t, "Failed to dispense Antibiotic: stuck", f.router.Handle(context.Background(), "please dispense the antibiotic"))
	})

	t.Run("pickup detected", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("MeasureDistance").Return(6.25)
		assert.Equal(t, "Pill pickup detected. Distance is 6.25 cm.", f.router.Handle(context.Background(), "check pill"))
	})

	t.Run("pickup not detected", func(t *testing.T) {
		f := newVoiceFixture(false)
		f.hw.On("MeasureDistance").Return(constants.DistanceUnknown)
		assert.Equal(t, "Pill pickup not detected. Distance is 999 cm.", f.router.Handle(context.Background(), "measure distance"))
	})
}

func TestVoiceRouter_Emergency(t *testing.T) {
	f := newVoiceFixture(true)
	f.notify.On("Notify", constants.PriorityEmergency, "EMERGENCY ALERT triggered by voice command from patient.").Return(true)

	got := f.router.Handle(context.Background(), "Emergency!")
	assert.Equal(t, "Emergency alert triggered. Help has been notified.", got)

	entries := f.chat.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, constants.ChatTypeError, entries[1].Type)
	assert.Equal(t, "EMERGENCY ALERT TRIGGERED VIA VOICE", entries[1].Message)
	f.notify.AssertExpectations(t)
	f.brain.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestVoiceRouter_FallsThroughToBrainOrLocal(t *testing.T) {
	f := newVoiceFixture(true)
	f.brain.On("Chat", mock.Anything, models.ChatRequest{Message: "tell me a joke"}).Return("Why did the pill cross the road?", nil).Once()
	assert.Equal(t, "Why did the pill cross the road?", f.router.Handle(context.Background(), "tell me a joke"))

	f.brain.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()
	assert.Equal(t, offlineReply, f.router.Handle(context.Background(), "tell me a joke"))

	f.conn.Set(false)
	assert.Equal(t, offlineReply, f.router.Handle(context.Background(), "tell me a joke"))
	f.brain.AssertNumberOfCalls(t, "Chat", 2)
}
