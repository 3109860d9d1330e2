package hardware

import (
	"errors"
	"net/http"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/schedule"
)

type selectUserRequest struct {
	UserID string `json:"user_id"`
}

// writeStatus writes the {"status": "error", "message": ...} envelope used by the page's user forms.
func writeStatus(w http.ResponseWriter, code int, message string) {
	api.WriteJSON(w, code, map[string]any{"status": "error", "message": message})
}

func (h *Handlers) selectUser(w http.ResponseWriter, r *http.Request) {
	var req selectUserRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		writeStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !h.Connection.Connected() {
		h.Logger.Warn().Msg("Server offline, cannot select user via server")
		writeStatus(w, http.StatusServiceUnavailable, "Server offline, cannot select user")
		return
	}

	user, err := h.Brain.SelectUser(r.Context(), req.UserID)
	if err != nil {
		h.Logger.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to select user")
		writeStatus(w, http.StatusNotFound, "User not found or server error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "user": user})
}

func (h *Handlers) addUser(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := api.DecodeJSON(r, &profile); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid user data")
		return
	}
	name := profile.Personal.Name
	if name == "" {
		name = "Unknown"
	}
	if !h.Connection.Connected() {
		h.Logger.Warn().Msg("Server offline, cannot add user via server")
		writeStatus(w, http.StatusServiceUnavailable, "Server offline, cannot add user")
		return
	}

	id, err := h.Brain.AddUser(r.Context(), profile)
	if err != nil {
		h.Logger.Warn().Err(err).Str("name", name).Msg("Failed to add user")
		writeStatus(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Chat.System(constants.SenderSystem, "New user created: "+name)
	h.Logger.Info().Str("user_id", id).Msg("User added successfully")
	api.WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "user_id": id})
}

// medicationInfo asks the brain for the slot's medication, falling back to the local
// catalogue while offline and to a marked entry when the brain fails.
func (h *Handlers) medicationInfo(w http.ResponseWriter, r *http.Request) {
	slot, err := api.IntParam(r, "slot")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid slot number")
		return
	}

	if !h.Connection.Connected() {
		info, err := schedule.LocalMedication(slot)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid slot number")
			return
		}
		api.WriteJSON(w, http.StatusOK, info)
		return
	}

	info, err := h.Brain.MedicationInfo(r.Context(), slot)
	if err == nil && info.Name != "" {
		api.WriteJSON(w, http.StatusOK, info)
		return
	}

	h.Logger.Warn().Err(err).Int("slot", slot).Msg("Failed to get medication info from server, falling back")
	fallback, ferr := schedule.FallbackMedication(slot)
	if ferr != nil {
		message := "missing name"
		if err != nil {
			message = err.Error()
		}
		api.WriteError(w, http.StatusBadRequest, "Invalid slot or server error: "+message)
		return
	}
	api.WriteJSON(w, http.StatusOK, fallback)
}

func (h *Handlers) schedule(w http.ResponseWriter, r *http.Request) {
	if h.Connection.Connected() {
		today, err := h.Brain.Schedule(r.Context())
		if err == nil && today.Today != nil {
			api.WriteJSON(w, http.StatusOK, today)
			return
		}
		h.Logger.Warn().Err(err).Msg("Failed to get schedule from server, using local schedule")
	}
	api.WriteJSON(w, http.StatusOK, schedule.LocalToday(h.now()))
}
