package dispatch

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_ServoCounterclockwise(t *testing.T) {
	calls := Detect("rotate servo 2 counterclockwise")

	require.Len(t, calls, 1)
	assert.Equal(t, models.FunctionCall{
		Function: constants.FunctionRotateServo,
		Args:     map[string]any{"servo_num": 2, "direction": constants.DirectionCounterclockwise},
	}, calls[0])
}

func TestDetect_WeatherAndDispense(t *testing.T) {
	calls := Detect("what's the weather in Paris and dispense the antibiotic")

	require.Len(t, calls, 2)
	assert.Equal(t, constants.FunctionGetWeather, calls[0].Function)
	assert.Equal(t, "Paris", calls[0].Args["city"])
	assert.Equal(t, "metric", calls[0].Args["units"])
	assert.Equal(t, constants.FunctionDispensePill, calls[1].Function)
	assert.Equal(t, 2, calls[1].Args["compartment"])
}

func TestDetect_Table(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		functions []string
	}{
		{"nothing", "hello there", []string{}},
		{"default city", "is it going to rain", []string{constants.FunctionGetWeather}},
		{"dispense without slot", "give me something", []string{}},
		{"dispense slot 1", "please dispense from slot 1", []string{constants.FunctionDispensePill}},
		{"distance", "measure the distance", []string{constants.FunctionMeasureDistance}},
		{"servo default", "turn the motor", []string{constants.FunctionRotateServo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := Detect(tt.text)
			names := []string{}
			for _, c := range calls {
				names = append(names, c.Function)
			}
			assert.Equal(t, tt.functions, names)
		})
	}
}

func TestExtractCity(t *testing.T) {
	assert.Equal(t, "Tokyo", extractCity("weather for tokyo?"))
	assert.Equal(t, "Berlin", extractCity("Berlin weather please"))
	assert.Equal(t, "London", extractCity("weather"))
	assert.Equal(t, "New-York", extractCity("forecast at new-york!"))
}

func TestDetect_ServoDefaults(t *testing.T) {
	calls := Detect("rotate the servo")
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].Args["servo_num"])
	assert.Equal(t, constants.DirectionClockwise, calls[0].Args["direction"])
}

func TestAvailableFunctions_Order(t *testing.T) {
	assert.Equal(t, []string{
		constants.FunctionGetWeather,
		constants.FunctionRotateServo,
		constants.FunctionDispensePill,
		constants.FunctionMeasureDistance,
	}, FunctionNames())
	assert.Equal(t, 4, FunctionSpecs().Len())
}

func TestFunctionSpecs_JSONKeepsOrder(t *testing.T) {
	data, err := json.Marshal(FunctionSpecs())
	require.NoError(t, err)

	var positions []int
	for _, name := range FunctionNames() {
		i := bytes.Index(data, []byte(`"`+name+`":{`))
		require.GreaterOrEqual(t, i, 0, name)
		positions = append(positions, i)
	}
	assert.IsIncreasing(t, positions)

	var decoded map[string]models.FunctionSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "metric", decoded[constants.FunctionGetWeather].Parameters["units"].Default)
}
