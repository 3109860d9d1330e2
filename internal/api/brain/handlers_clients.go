package brain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/clients"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/dispatch"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
	"golang.org/x/sync/errgroup"
)

const emergencyTimeout = 5 * time.Second

// heartbeat doubles as a liveness ping for registered nodes.
func (h *Handlers) heartbeat(w http.ResponseWriter, r *http.Request) {
	h.Registry.Touch(utils.RemoteHost(r))
	api.WriteJSON(w, http.StatusOK, models.Heartbeat{
		Status:       constants.StatusOK,
		ServerTime:   h.now().Format(isoTime),
		ClientsCount: h.Registry.Count(),
	})
}

func (h *Handlers) registerClient(w http.ResponseWriter, r *http.Request) {
	caller := utils.RemoteHost(r)

	var payload models.RegistrationPayload
	if err := api.DecodeJSON(r, &payload); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid client data")
		return
	}

	_, err := h.Registry.Register(caller, payload)
	switch {
	case errors.Is(err, clients.ErrEmptyPayload):
		api.WriteError(w, http.StatusBadRequest, "No client data provided")
		return
	case errors.Is(err, clients.ErrUnsupportedVersion):
		h.Logger.Warn().Err(err).Str("client", caller).Msg("Rejected client registration")
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.RegisteredClients.Set(float64(h.Registry.Count()))

	api.WriteJSON(w, http.StatusOK, models.RegistrationResponse{
		Success:    true,
		Message:    "Client registered successfully",
		ClientIP:   caller,
		ServerTime: h.now().Format(isoTime),
	})
}

func (h *Handlers) listClients(w http.ResponseWriter, r *http.Request) {
	list := h.Registry.List()
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"clients": list,
		"count":   len(list),
	})
}

func (h *Handlers) availableFunctions(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"functions": dispatch.FunctionSpecs(),
	})
}

func (h *Handlers) executeFunction(w http.ResponseWriter, r *http.Request) {
	var req models.FunctionCallRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.FunctionName == "" {
		api.WriteError(w, http.StatusBadRequest, "Missing function_name")
		return
	}

	target := req.ClientIP
	if target == "" {
		target = utils.RemoteHost(r)
	}
	if _, ok := h.Registry.Get(target); !ok {
		api.WriteError(w, http.StatusNotFound, "Target client not registered")
		return
	}

	result, err := h.Executor.Execute(r.Context(), req.FunctionName, req.Args, target)
	api.WriteJSON(w, envelopeStatus(err), result)
}

func (h *Handlers) servoRotate(w http.ResponseWriter, r *http.Request) {
	var req models.ServoRotateRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ServoNum == 0 {
		req.ServoNum = 1
	}
	if req.Direction == "" {
		req.Direction = constants.DirectionClockwise
	}

	target, ok := h.target(w, r)
	if !ok {
		return
	}
	h.Logger.Info().Int("servo", req.ServoNum).Str("direction", req.Direction).Str("client", target).Msg("Servo rotate request")

	result, err := h.Executor.Execute(r.Context(), constants.FunctionRotateServo, map[string]any{
		"servo_num": req.ServoNum,
		"direction": req.Direction,
	}, target)
	api.WriteJSON(w, envelopeStatus(err), result)
}

func (h *Handlers) servoPosition(w http.ResponseWriter, r *http.Request) {
	servo, err := api.IntParam(r, "servo")
	if err != nil || (servo != 1 && servo != 2) {
		api.WriteError(w, http.StatusBadRequest, "Invalid servo number. Must be 1 or 2")
		return
	}

	target, ok := h.target(w, r)
	if !ok {
		return
	}

	result, err := h.Executor.ServoPosition(r.Context(), target, servo)
	if err != nil {
		h.Logger.Error().Err(err).Int("servo", servo).Str("client", target).Msg("Error getting servo position")
	}
	api.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) dispense(w http.ResponseWriter, r *http.Request) {
	slot, err := api.IntParam(r, "slot")
	if err != nil || (slot != 1 && slot != 2) {
		api.WriteError(w, http.StatusBadRequest, "Invalid slot number. Must be 1 or 2")
		return
	}

	target, ok := h.target(w, r)
	if !ok {
		return
	}
	h.Logger.Info().Int("slot", slot).Str("client", target).Msg("Manual pill dispense request")

	result, err := h.Executor.Execute(r.Context(), constants.FunctionDispensePill, map[string]any{"compartment": slot}, target)
	api.WriteJSON(w, envelopeStatus(err), result)
}

func (h *Handlers) checkPillPickup(w http.ResponseWriter, r *http.Request) {
	target, ok := h.Registry.Target(utils.RemoteHost(r))
	if !ok {
		api.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success":     false,
			"error":       "No clients available",
			"distance_cm": constants.DistanceUnknown,
		})
		return
	}

	result, _ := h.Executor.Execute(r.Context(), constants.FunctionMeasureDistance, map[string]any{}, target)
	if success, _ := result["success"].(bool); !success {
		result["distance_cm"] = constants.DistanceUnknown
	}
	api.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) weather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		city = "London"
	}
	units := r.URL.Query().Get("units")
	if units == "" {
		units = "metric"
	}

	target, ok := h.Registry.Target(utils.RemoteHost(r))
	if !ok {
		api.WriteError(w, http.StatusServiceUnavailable, "No clients available")
		return
	}

	result, err := h.Executor.Execute(r.Context(), constants.FunctionGetWeather, map[string]any{"city": city, "units": units}, target)
	api.WriteJSON(w, envelopeStatus(err), result)
}

// emergency logs the alert and fans it out to every registered node. Unreachable
// nodes do not fail the request.
func (h *Handlers) emergency(w http.ResponseWriter, r *http.Request) {
	event := models.EmergencyEvent{
		Timestamp: h.now().Format(isoTime),
		ClientIP:  utils.RemoteHost(r),
		Type:      "manual_emergency_button",
		Status:    "logged",
	}
	h.Logger.Warn().
		Str("client", event.ClientIP).
		Str("timestamp", event.Timestamp).
		Msg("EMERGENCY ALERT")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), emergencyTimeout)
	defer cancel()

	var g errgroup.Group
	for address := range h.Registry.List() {
		g.Go(func() error {
			if err := h.Executor.Alert(ctx, address, event); err != nil {
				return fmt.Errorf("notify %s: %w", address, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.Logger.Warn().Err(err).Msg("Could not notify every client of the emergency")
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Emergency alert has been sent",
		"timestamp": event.Timestamp,
	})
}

// target resolves the node for a manual control request, answering 503 when none is registered.
func (h *Handlers) target(w http.ResponseWriter, r *http.Request) (string, bool) {
	target, ok := h.Registry.Target(utils.RemoteHost(r))
	if !ok {
		api.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "No clients available",
			"message": "No Raspberry Pi clients are currently connected",
		})
		return "", false
	}
	return target, true
}

// envelopeStatus maps dispatcher errors to a status code. Failures reported by the
// node itself pass through with 200 so the envelope reaches the caller unchanged.
func envelopeStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dispatch.ErrUnknownFunction), errors.Is(err, dispatch.ErrInvalidArgs):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrClientNotRegistered):
		return http.StatusNotFound
	}
	return http.StatusOK
}
