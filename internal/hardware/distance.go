package hardware

import (
	"math/rand"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/rs/zerolog"
)

const (
	triggerSettle   = 500 * time.Millisecond
	triggerPulse    = 10 * time.Microsecond
	echoTimeout     = 100 * time.Millisecond
	speedOfSoundCMS = 17150 // half the speed of sound in cm/s, out and back
)

// Ranger returns a distance in centimetres, or constants.DistanceUnknown.
type Ranger interface {
	Measure() float64
}

// DistanceSensor reads an HC-SR04 style ultrasonic sensor by busy-waiting on the echo line.
type DistanceSensor struct {
	Trigger TriggerPin
	Echo    EchoPin
	Logger  zerolog.Logger

	mu    sync.Mutex
	now   func() time.Time
	sleep func(time.Duration)
}

// NewDistanceSensor creates a sensor on the given pins.
func NewDistanceSensor(trigger TriggerPin, echo EchoPin, logger zerolog.Logger) *DistanceSensor {
	return &DistanceSensor{
		Trigger: trigger,
		Echo:    echo,
		Logger:  logger,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Measure takes a single sample. Both echo waits share one deadline counted from the
// end of the trigger pulse.
func (s *DistanceSensor) Measure() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pulseTrigger(); err != nil {
		s.Logger.Error().Err(err).Msg("Error during distance measurement")
		return constants.DistanceUnknown
	}

	pulseStart := s.now()
	deadline := pulseStart.Add(echoTimeout)

	for {
		high, err := s.Echo.Read()
		if err != nil {
			s.Logger.Error().Err(err).Msg("Error reading echo pin")
			return constants.DistanceUnknown
		}
		if high {
			break
		}
		pulseStart = s.now()
		if pulseStart.After(deadline) {
			s.Logger.Warn().Msg("Distance measurement timeout (waiting for echo start)")
			return constants.DistanceUnknown
		}
	}

	pulseEnd := s.now()
	for {
		high, err := s.Echo.Read()
		if err != nil {
			s.Logger.Error().Err(err).Msg("Error reading echo pin")
			return constants.DistanceUnknown
		}
		if !high {
			break
		}
		pulseEnd = s.now()
		if pulseEnd.After(deadline) {
			s.Logger.Warn().Msg("Distance measurement timeout (waiting for echo end)")
			return constants.DistanceUnknown
		}
	}

	distance := utils.Round2(pulseEnd.Sub(pulseStart).Seconds() * speedOfSoundCMS)
	s.Logger.Debug().Float64("distance_cm", distance).Msg("Measured distance")
	return distance
}

func (s *DistanceSensor) pulseTrigger() error {
	if err := s.Trigger.Set(false); err != nil {
		return err
	}
	s.sleep(triggerSettle)
	if err := s.Trigger.Set(true); err != nil {
		return err
	}
	s.sleep(triggerPulse)
	return s.Trigger.Set(false)
}

// mockRanger stands in for the sensor on hosts without GPIO.
type mockRanger struct {
	mu     sync.Mutex
	rand   *rand.Rand
	Logger zerolog.Logger
}

func newMockRanger(logger zerolog.Logger) *mockRanger {
	return &mockRanger{rand: rand.New(rand.NewSource(time.Now().UnixNano())), Logger: logger}
}

// Measure returns a uniform reading in [5, 20] cm.
func (m *mockRanger) Measure() float64 {
	m.mu.Lock()
	distance := utils.Round2(5 + m.rand.Float64()*15)
	m.mu.Unlock()

	m.Logger.Debug().Float64("distance_cm", distance).Msg("MOCK: Measured distance")
	return distance
}
