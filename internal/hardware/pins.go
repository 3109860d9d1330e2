package hardware

import (
	"errors"
	"fmt"
	"os"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// servoFrequency is the PWM frequency hobby servos expect.
const servoFrequency = 50 * physic.Hertz

// gpioSysfsPath marks a board with a GPIO controller.
var gpioSysfsPath = "/sys/class/gpio"

// ErrNoGPIO is returned when the host has no usable GPIO controller.
var ErrNoGPIO = errors.New("gpio not available")

// PWMPin drives a servo signal line. A duty of 0 stops the signal.
type PWMPin interface {
	SetDuty(percent float64) error
	Halt() error
}

// TriggerPin is the ultrasonic sensor's trigger output.
type TriggerPin interface {
	Set(high bool) error
}

// EchoPin is the ultrasonic sensor's echo input.
type EchoPin interface {
	Read() (bool, error)
}

// PinConfig names the BCM pins used by the dispenser.
type PinConfig struct {
	Servo1  string
	Servo2  string
	Trigger string
	Echo    string
}

// Pins groups the opened lines.
type Pins struct {
	Servos  [2]PWMPin
	Trigger TriggerPin
	Echo    EchoPin
}

// OpenPins initialises the periph host drivers and claims the configured pins.
func OpenPins(cfg PinConfig) (*Pins, error) {
	if _, err := os.Stat(gpioSysfsPath); err != nil {
		return nil, fmt.Errorf("%w: %s missing", ErrNoGPIO, gpioSysfsPath)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrNoGPIO, err)
	}

	lookup := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: pin %s not found", ErrNoGPIO, name)
		}
		return p, nil
	}

	servo1, err := lookup(cfg.Servo1)
	if err != nil {
		return nil, err
	}
	servo2, err := lookup(cfg.Servo2)
	if err != nil {
		return nil, err
	}
	trigger, err := lookup(cfg.Trigger)
	if err != nil {
		return nil, err
	}
	echo, err := lookup(cfg.Echo)
	if err != nil {
		return nil, err
	}

	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure trigger: %w", err)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure echo: %w", err)
	}

	return &Pins{
		Servos:  [2]PWMPin{&periphPWM{pin: servo1}, &periphPWM{pin: servo2}},
		Trigger: periphOut{pin: trigger},
		Echo:    periphIn{pin: echo},
	}, nil
}

type periphPWM struct {
	pin gpio.PinIO
}

func (p *periphPWM) SetDuty(percent float64) error {
	if percent <= 0 {
		return p.pin.Out(gpio.Low)
	}
	duty := gpio.Duty(percent / 100 * float64(gpio.DutyMax))
	return p.pin.PWM(duty, servoFrequency)
}

func (p *periphPWM) Halt() error {
	return p.pin.Halt()
}

type periphOut struct {
	pin gpio.PinIO
}

func (p periphOut) Set(high bool) error {
	return p.pin.Out(gpio.Level(high))
}

type periphIn struct {
	pin gpio.PinIO
}

func (p periphIn) Read() (bool, error) {
	return bool(p.pin.Read()), nil
}
