package hardware

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidServoID is returned for servo numbers other than 1 and 2.
	ErrInvalidServoID = errors.New("servo number must be 1 or 2")
	// ErrInvalidDirection is returned for directions other than clockwise and counterclockwise.
	ErrInvalidDirection = errors.New(`direction must be "clockwise" or "counterclockwise"`)
	// ErrHardware wraps failures of the underlying pins.
	ErrHardware = errors.New("hardware error")
)

const (
	servoSettle     = 500 * time.Millisecond
	dispenseOpen    = 7.5
	dispenseClose   = 2.5
	dutyAtZero      = 2.5
	dutyPerHalfTurn = 10.0
)

// HardwareInterface is what the request handlers and voice router need from the dispenser.
type HardwareInterface interface {
	Mode() string
	Rotate(servo int, direction string) (int, error)
	Position(servo int) (int, error)
	Dispense(servo int) error
	MeasureDistance() float64
}

// Controller owns both servos and the distance sensor. Servo positions are tracked in
// memory only and start at 0 on every boot.
type Controller struct {
	Logger zerolog.Logger

	mu        sync.Mutex
	positions [2]int
	servos    [2]PWMPin
	ranger    Ranger
	mock      bool
	sleep     func(time.Duration)
}

// NewController drives the given pins. Nil pins select mock mode, where positions are
// tracked identically but no signal is emitted.
func NewController(pins *Pins, logger zerolog.Logger) *Controller {
	c := &Controller{Logger: logger, sleep: time.Sleep}
	if pins == nil {
		c.mock = true
		c.ranger = newMockRanger(logger)
		logger.Warn().Msg("Hardware controller initialized in MOCK mode")
		return c
	}

	c.servos = pins.Servos
	c.ranger = NewDistanceSensor(pins.Trigger, pins.Echo, logger)
	logger.Info().Msg("Hardware controller initialized in HARDWARE mode")
	return c
}

// NewControllerForMode opens real pins for "real", uses mock for "mock", and for "auto"
// falls back to mock when the pins cannot be opened.
func NewControllerForMode(mode string, cfg PinConfig, logger zerolog.Logger) (*Controller, error) {
	if mode == constants.HardwareModeMock {
		return NewController(nil, logger), nil
	}

	pins, err := OpenPins(cfg)
	if err != nil {
		if mode == constants.HardwareModeReal {
			return nil, err
		}
		logger.Warn().Err(err).Msg("Falling back to MOCK mode")
		return NewController(nil, logger), nil
	}
	return NewController(pins, logger), nil
}

// Mode returns "real" or "mock".
func (c *Controller) Mode() string {
	if c.mock {
		return constants.HardwareModeMock
	}
	return constants.HardwareModeReal
}

// Rotate turns servo by 90 degrees and returns the new tracked angle.
func (c *Controller) Rotate(servo int, direction string) (int, error) {
	idx, err := servoIndex(servo)
	if err != nil {
		return 0, err
	}

	var step int
	switch direction {
	case constants.DirectionClockwise:
		step = 90
	case constants.DirectionCounterclockwise:
		step = -90
	default:
		return 0, ErrInvalidDirection
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := normalizeAngle(c.positions[idx] + step)

	if !c.mock {
		pin := c.servos[idx]
		if err := pin.SetDuty(DutyForAngle(next)); err != nil {
			return c.positions[idx], fmt.Errorf("%w: rotate servo %d: %v", ErrHardware, servo, err)
		}
		c.sleep(servoSettle)
		if err := pin.SetDuty(0); err != nil {
			return c.positions[idx], fmt.Errorf("%w: stop servo %d: %v", ErrHardware, servo, err)
		}
	}

	c.positions[idx] = next
	c.Logger.Info().
		Int("servo", servo).
		Str("direction", direction).
		Int("position", next).
		Bool("mock", c.mock).
		Msg("Servo rotated 90 degrees")
	return next, nil
}

// Position returns the tracked angle of servo.
func (c *Controller) Position(servo int) (int, error) {
	idx, err := servoIndex(servo)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positions[idx], nil
}

// Dispense runs the fixed open/close pulse on servo. It does not touch the tracked angle.
func (c *Controller) Dispense(servo int) error {
	idx, err := servoIndex(servo)
	if err != nil {
		return err
	}

	if c.mock {
		c.Logger.Info().Int("servo", servo).Msg("MOCK: Dispensing pill")
		metrics.Dispenses.WithLabelValues(strconv.Itoa(servo)).Inc()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pin := c.servos[idx]
	for _, duty := range []float64{dispenseOpen, dispenseClose} {
		if err := pin.SetDuty(duty); err != nil {
			return fmt.Errorf("%w: dispense servo %d: %v", ErrHardware, servo, err)
		}
		c.sleep(servoSettle)
	}
	if err := pin.SetDuty(0); err != nil {
		return fmt.Errorf("%w: dispense servo %d: %v", ErrHardware, servo, err)
	}

	c.Logger.Info().Int("servo", servo).Msg("Dispensed pill")
	metrics.Dispenses.WithLabelValues(strconv.Itoa(servo)).Inc()
	return nil
}

// MeasureDistance samples the distance sensor once.
func (c *Controller) MeasureDistance() float64 {
	return c.ranger.Measure()
}

// Close releases the servo lines.
func (c *Controller) Close() error {
	if c.mock {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, pin := range c.servos {
		if err := pin.Halt(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		c.Logger.Info().Msg("GPIO resources cleaned up")
	}
	return errors.Join(errs...)
}

// DutyForAngle maps 0..180 degrees linearly onto 2.5..12.5 percent duty.
func DutyForAngle(angle int) float64 {
	return dutyAtZero + float64(angle)/180*dutyPerHalfTurn
}

func normalizeAngle(angle int) int {
	return ((angle % 360) + 360) % 360
}

func servoIndex(servo int) (int, error) {
	if servo != 1 && servo != 2 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidServoID, servo)
	}
	return servo - 1, nil
}
