package hardware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/dispatch"
	hw "github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/schedule"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) dispense(w http.ResponseWriter, r *http.Request) {
	compartment, err := api.IntParam(r, "compartment")
	if err != nil || (compartment != 1 && compartment != 2) {
		h.Logger.Warn().Str("compartment", chi.URLParam(r, "compartment")).Msg("Invalid compartment number")
		api.WriteError(w, http.StatusBadRequest, "Invalid compartment number")
		return
	}

	if err := h.Hardware.Dispense(compartment); err != nil {
		h.Logger.Error().Err(err).Int("compartment", compartment).Msg("Dispense failed")
		h.Chat.Error(constants.SenderHardware, fmt.Sprintf("Failed to dispense from compartment %d: %v", compartment, err))
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	message := fmt.Sprintf("%s dispensed from compartment %d", schedule.MedicationName(compartment), compartment)
	h.Chat.System(constants.SenderSystem, message)
	h.Logger.Info().Int("compartment", compartment).Msg(message)
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "status": message})
}

func (h *Handlers) distance(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"distance_cm": h.Hardware.MeasureDistance(),
	})
}

// checkPillPickup measures once; a miss notifies the caregiver.
func (h *Handlers) checkPillPickup(w http.ResponseWriter, r *http.Request) {
	distance := h.Hardware.MeasureDistance()
	taken := distance < h.threshold()
	metrics.RecordPickup(taken)

	status := "Pill not taken"
	if taken {
		status = "Pill taken"
		h.Chat.System(constants.SenderSystem, "Pill pickup detected")
		h.Logger.Info().Float64("distance_cm", distance).Msg("Pill pickup detected")
	} else {
		medication := r.URL.Query().Get("medication")
		if medication == "" {
			medication = "Medication"
		}
		at := r.URL.Query().Get("time")
		if at == "" {
			at = h.now().Format("15:04")
		}

		h.Logger.Warn().Str("medication", medication).Str("time", at).Float64("distance_cm", distance).
			Msg("No pill pickup detected, notifying caregiver")
		h.Notifier.Notify(constants.PriorityWarning,
			fmt.Sprintf("Patient hasn't picked up %s scheduled for %s. Distance: %v cm.", medication, at, distance))
		h.Chat.System(constants.SenderSystem,
			fmt.Sprintf("Pill (%s) not picked up. Caregiver notified. Distance: %v cm.", medication, distance))
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"distance_cm": distance,
		"pill_taken":  taken,
	})
}

func (h *Handlers) servoRotate(w http.ResponseWriter, r *http.Request) {
	var req models.ServoRotateRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	status, body := h.rotate(req.ServoNum, req.Direction)
	api.WriteJSON(w, status, body)
}

// rotate turns a servo and logs the outcome to the chat. Zero values take the defaults
// servo 1 and clockwise.
func (h *Handlers) rotate(servo int, direction string) (int, map[string]any) {
	if servo == 0 {
		servo = 1
	}
	if direction == "" {
		direction = constants.DirectionClockwise
	}

	position, err := h.Hardware.Rotate(servo, direction)
	switch {
	case errors.Is(err, hw.ErrInvalidDirection):
		return http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid direction",
			"message": `Direction must be "clockwise" or "counterclockwise"`,
		}
	case errors.Is(err, hw.ErrInvalidServoID):
		return http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid servo number",
			"message": "Servo number must be 1 or 2",
		}
	case err != nil:
		message := fmt.Sprintf("Failed to rotate servo %d: %v", servo, err)
		h.Logger.Error().Err(err).Int("servo", servo).Msg("Error rotating servo")
		h.Chat.Error(constants.SenderHardware, message)
		return http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Hardware error",
			"message": message,
		}
	}

	h.Chat.System(constants.SenderHardware, fmt.Sprintf("Servo %d rotated 90° %s", servo, direction))
	h.Logger.Info().Int("servo", servo).Str("direction", direction).Int("position", position).Msg("Servo rotated")
	return http.StatusOK, map[string]any{
		"success":      true,
		"servo":        servo,
		"direction":    direction,
		"new_position": position,
		"message":      fmt.Sprintf("Servo %d rotated 90° %s to %d°", servo, direction, position),
	}
}

func (h *Handlers) servoPosition(w http.ResponseWriter, r *http.Request) {
	servo, err := api.IntParam(r, "servo")
	if err == nil {
		var position int
		if position, err = h.Hardware.Position(servo); err == nil {
			api.WriteJSON(w, http.StatusOK, map[string]any{
				"success":  true,
				"servo":    servo,
				"position": position,
				"message":  fmt.Sprintf("Servo %d position: %d°", servo, position),
			})
			return
		}
	}

	api.WriteJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   "Invalid servo number",
		"message": "Servo number must be 1 or 2",
	})
}

// functionCall runs a function forwarded by the brain node.
func (h *Handlers) functionCall(w http.ResponseWriter, r *http.Request) {
	var req models.FunctionCallRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	switch req.FunctionName {
	case constants.FunctionGetWeather:
		city, _ := req.Args["city"].(string)
		units, _ := req.Args["units"].(string)
		report := h.fetchWeather(r.Context(), city, units)
		h.Logger.Info().Str("function", req.FunctionName).Msg("Function call executed")
		api.WriteJSON(w, http.StatusOK, report)

	case constants.FunctionRotateServo:
		servo, _ := dispatch.IntArg(req.Args, "servo_num")
		direction, _ := req.Args["direction"].(string)
		status, body := h.rotate(servo, direction)
		h.Logger.Info().Str("function", req.FunctionName).Int("status", status).Msg("Function call executed")
		api.WriteJSON(w, status, body)

	default:
		api.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Function not found",
			"message": fmt.Sprintf("Function %q is not available", req.FunctionName),
		})
	}
}

func (h *Handlers) weather(w http.ResponseWriter, r *http.Request) {
	report := h.fetchWeather(r.Context(), r.URL.Query().Get("city"), r.URL.Query().Get("units"))
	api.WriteJSON(w, http.StatusOK, report)
}

// fetchWeather looks up the weather and records the outcome in the chat.
func (h *Handlers) fetchWeather(ctx context.Context, city, units string) models.WeatherReport {
	if city == "" {
		city = h.DefaultCity
	}
	if units == "" {
		units = "metric"
	}

	report, err := h.Weather.Current(ctx, city, units)
	if err != nil {
		h.Chat.Error(constants.SenderWeather, fmt.Sprintf("Failed to get weather for %s: %s", city, report.Message))
		return report
	}

	h.Chat.System(constants.SenderWeather, fmt.Sprintf("Weather in %s: %v%s, %s",
		report.City, report.Temperature, weather.TemperatureUnit(units), report.Description))
	h.Logger.Info().Str("city", city).Msg("Weather data retrieved")
	return report
}

func (h *Handlers) connectionStatus(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"server_connected": h.Connection.Connected(),
		"server_url":       h.Brain.URL(),
		"client_ip":        h.LocalIP,
	})
}

func (h *Handlers) threshold() float64 {
	if h.PickupThreshold > 0 {
		return h.PickupThreshold
	}
	return constants.DefaultPickupThresholdCM
}
