package hardware

import (
	"fmt"
	"net/http"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
)

type voiceRequest struct {
	Command string `json:"command"`
}

// llmResponse answers a typed message through the brain, or locally while the brain
// is unreachable or fails.
func (h *Handlers) llmResponse(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "No JSON data")
		return
	}

	h.Chat.Append(constants.ChatTypeUser, constants.SenderYou, req.Message)
	h.Logger.Info().Str("message", req.Message).Msg("User message")

	mode := "local"
	var reply string
	if h.Connection.Connected() {
		text, err := h.Brain.Chat(r.Context(), models.ChatRequest{Message: req.Message, UserID: req.UserID})
		if err == nil {
			reply, mode = text, "llm"
		} else {
			h.Logger.Warn().Err(err).Msg("Failed to get LLM response, answering locally")
		}
	} else {
		h.Logger.Warn().Msg("Server not connected, using local fallback response")
	}
	if mode == "local" {
		reply = h.Local.Respond(r.Context(), req.Message)
	}
	metrics.ChatRequests.WithLabelValues(mode).Inc()

	h.Chat.Append(constants.ChatTypeBot, constants.SenderAssistant, reply)
	api.WriteJSON(w, http.StatusOK, models.ChatResponse{Success: true, Response: reply, Mode: mode})
}

func (h *Handlers) voiceCommand(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "No JSON data")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"message": h.Voice.Handle(r.Context(), req.Command)})
}

func (h *Handlers) emergency(w http.ResponseWriter, r *http.Request) {
	h.Chat.Error(constants.SenderSystem, "EMERGENCY ALERT TRIGGERED FROM UI")
	h.Notifier.Notify(constants.PriorityEmergency, "EMERGENCY ALERT triggered from the web interface.")
	h.Logger.Error().Msg("EMERGENCY ALERT TRIGGERED FROM UI")
	api.WriteJSON(w, http.StatusOK, map[string]any{"status": "Emergency alert triggered and caregiver notified."})
}

// emergencyAlert receives an emergency raised on the brain node and relays it to the caregiver.
func (h *Handlers) emergencyAlert(w http.ResponseWriter, r *http.Request) {
	var event models.EmergencyEvent
	if err := api.DecodeJSON(r, &event); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid emergency event")
		return
	}

	h.Chat.Error(constants.SenderSystem, fmt.Sprintf("EMERGENCY ALERT raised by %s at %s", event.ClientIP, event.Timestamp))
	h.Notifier.Notify(constants.PriorityEmergency, fmt.Sprintf("EMERGENCY ALERT raised from %s.", event.ClientIP))
	h.Logger.Error().Str("client", event.ClientIP).Str("type", event.Type).Msg("EMERGENCY ALERT received from brain node")
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
