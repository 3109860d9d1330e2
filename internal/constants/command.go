package constants

import "time"

// Function names the brain node dispatches to a hardware node.
const (
	FunctionGetWeather      = "get_weather_data"
	FunctionRotateServo     = "rotate_servo_90_degrees"
	FunctionDispensePill    = "dispense_pill"
	FunctionMeasureDistance = "measure_distance"
)

// Servo rotation directions
const (
	DirectionClockwise        = "clockwise"
	DirectionCounterclockwise = "counterclockwise"
)

const (
	// DistanceUnknown is the sentinel reading returned when the sensor timed out or is unavailable.
	DistanceUnknown = 999.0

	// DefaultPickupThresholdCM is the distance below which a pill counts as picked up.
	DefaultPickupThresholdCM = 10.0

	// DefaultFunctionTimeout bounds a forwarded function call.
	DefaultFunctionTimeout = 10 * time.Second
)

// Target selection policies for forwarded function calls.
const (
	TargetCallerOrFirst  = "caller-or-first"
	TargetCallerOrLatest = "caller-or-latest"
)
