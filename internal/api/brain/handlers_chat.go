package brain

import (
	"errors"
	"net/http"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/llm"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
)

const defaultUserID = "1"

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "No JSON data")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	caller := utils.RemoteHost(r)
	h.Logger.Info().Str("client", caller).Str("user_id", req.UserID).Str("message", req.Message).Msg("Chat request")

	reply := h.Assistant.Chat(r.Context(), caller, req.UserID, req.Message)
	recordChat(reply.Text)

	api.WriteJSON(w, http.StatusOK, models.ChatResponse{Success: true, Response: reply.Text})
}

// simpleChat answers the bare message without profile context and echoes routing details.
func (h *Handlers) simpleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, api.ErrEmptyBody) {
			api.WriteError(w, http.StatusBadRequest, "No JSON data")
			return
		}
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if req.Message == "" {
		api.WriteError(w, http.StatusBadRequest, "Empty message")
		return
	}

	caller := utils.RemoteHost(r)
	reply := h.Assistant.Respond(r.Context(), caller, req.Message)
	recordChat(reply.Text)

	var target any
	if reply.Target != "" {
		target = reply.Target
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": reply.Text,
		"debug_info": map[string]any{
			"client_ip":          caller,
			"user_id":            req.UserID,
			"registered_clients": h.Registry.Count(),
			"target_client":      target,
		},
	})
}

func recordChat(text string) {
	mode := "llm"
	if text == llm.ReplyUpstreamError || text == llm.ReplyInternalError {
		mode = "error"
	}
	metrics.ChatRequests.WithLabelValues(mode).Inc()
}
