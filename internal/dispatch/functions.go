package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/elliotchance/orderedmap/v2"
)

// AvailableFunctions returns the dispatchable functions in their advertised order.
func AvailableFunctions() *orderedmap.OrderedMap[string, models.FunctionSpec] {
	catalogue := orderedmap.NewOrderedMap[string, models.FunctionSpec]()

	catalogue.Set(constants.FunctionGetWeather, models.FunctionSpec{
		Description: "Get current weather information for a city",
		Parameters: map[string]models.ParameterSpec{
			"city":  {Type: "string", Description: "City name"},
			"units": {Type: "string", Description: "Temperature units (metric, imperial, kelvin)", Default: "metric"},
		},
	})
	catalogue.Set(constants.FunctionRotateServo, models.FunctionSpec{
		Description: "Rotate a servo motor by 90 degrees",
		Parameters: map[string]models.ParameterSpec{
			"servo_num": {Type: "integer", Description: "Servo number (1 or 2)"},
			"direction": {Type: "string", Description: "Rotation direction (clockwise or counterclockwise)", Default: constants.DirectionClockwise},
		},
	})
	catalogue.Set(constants.FunctionDispensePill, models.FunctionSpec{
		Description: "Dispense medication from a specific compartment",
		Parameters: map[string]models.ParameterSpec{
			"compartment": {Type: "integer", Description: "Compartment number (1 or 2)"},
		},
	})
	catalogue.Set(constants.FunctionMeasureDistance, models.FunctionSpec{
		Description: "Measure distance using ultrasonic sensor to check pill pickup",
		Parameters:  map[string]models.ParameterSpec{},
	})

	return catalogue
}

// FunctionNames lists the catalogue keys in order.
func FunctionNames() []string {
	return AvailableFunctions().Keys()
}

// Catalogue is the function catalogue as a JSON object whose keys keep their
// advertised order.
type Catalogue struct {
	*orderedmap.OrderedMap[string, models.FunctionSpec]
}

// FunctionSpecs returns the catalogue for JSON encoding.
func FunctionSpecs() Catalogue {
	return Catalogue{AvailableFunctions()}
}

func (c Catalogue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for el := c.Front(); el != nil; el = el.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(el.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(el.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
