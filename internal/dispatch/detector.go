package dispatch

import (
	"strings"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
)

const defaultCity = "London"

var (
	weatherKeywords  = []string{"weather", "temperature", "forecast", "rain", "sunny", "cloudy"}
	servoKeywords    = []string{"rotate", "turn", "servo", "motor"}
	dispenseKeywords = []string{"dispense", "give", "take", "pill", "medication"}
	distanceKeywords = []string{"distance", "measure", "pickup", "check pill"}

	cityPrepositions = []string{"in", "for", "at"}
	knownCities      = []string{"london", "paris", "tokyo", "newyork", "sydney", "berlin"}
)

// Detect returns the hardware functions implied by text. Keyword sets are matched as
// substrings of the lowercased text and fire independently of each other.
func Detect(text string) []models.FunctionCall {
	lower := strings.ToLower(text)
	calls := []models.FunctionCall{}

	if containsAny(lower, weatherKeywords) {
		calls = append(calls, models.FunctionCall{
			Function: constants.FunctionGetWeather,
			Args:     map[string]any{"city": extractCity(text), "units": "metric"},
		})
	}

	if containsAny(lower, servoKeywords) {
		servo := 1
		if strings.Contains(lower, "2") || strings.Contains(lower, "two") {
			servo = 2
		}
		direction := constants.DirectionClockwise
		if containsAny(lower, []string{"counter", "anti", "left"}) {
			direction = constants.DirectionCounterclockwise
		}
		calls = append(calls, models.FunctionCall{
			Function: constants.FunctionRotateServo,
			Args:     map[string]any{"servo_num": servo, "direction": direction},
		})
	}

	if containsAny(lower, dispenseKeywords) {
		if compartment := resolveCompartment(lower); compartment != 0 {
			calls = append(calls, models.FunctionCall{
				Function: constants.FunctionDispensePill,
				Args:     map[string]any{"compartment": compartment},
			})
		}
	}

	if containsAny(lower, distanceKeywords) {
		calls = append(calls, models.FunctionCall{
			Function: constants.FunctionMeasureDistance,
			Args:     map[string]any{},
		})
	}

	return calls
}

// resolveCompartment maps medication names and slot phrases to a compartment, 0 if none match.
func resolveCompartment(lower string) int {
	switch {
	case containsAny(lower, []string{"paracetamol", "slot 1", "compartment 1"}):
		return 1
	case containsAny(lower, []string{"antibiotic", "slot 2", "compartment 2"}):
		return 2
	}
	return 0
}

// extractCity takes the word after the first preposition, or the first known city name.
func extractCity(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		clean := strings.ToLower(strings.Trim(word, "?.,!"))
		if contains(cityPrepositions, clean) && i+1 < len(words) {
			return titleCase(strings.Trim(words[i+1], "?.,!"))
		}
		if contains(knownCities, clean) {
			return titleCase(clean)
		}
	}
	return defaultCity
}

func titleCase(word string) string {
	var b strings.Builder
	upper := true
	for _, r := range strings.ToLower(word) {
		isLetter := (r >= 'a' && r <= 'z') || r > 127
		if isLetter && upper {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
		upper = !isLetter
	}
	return b.String()
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
