package brain

import (
	"errors"
	"net/http"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/schedule"
	"github.com/benmeehan/zima/internal/users"
)

type saveUserRequest struct {
	UserID   string              `json:"user_id"`
	UserData *models.UserProfile `json:"user_data"`
}

type selectUserRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Users.List()
	if err != nil {
		h.Logger.Error().Err(err).Msg("Error listing users")
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "users": profiles})
}

func (h *Handlers) saveUser(w http.ResponseWriter, r *http.Request) {
	var req saveUserRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.UserData == nil {
		api.WriteError(w, http.StatusBadRequest, "Missing user_id or user_data")
		return
	}

	profile := *req.UserData
	profile.ID = req.UserID
	if err := h.Users.Save(req.UserID, profile); err != nil {
		h.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("Error saving user")
		api.WriteError(w, http.StatusInternalServerError, "Failed to save user data")
		return
	}
	h.Logger.Info().Str("user_id", req.UserID).Msg("Saved user data")
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handlers) selectUser(w http.ResponseWriter, r *http.Request) {
	var req selectUserRequest
	if err := api.DecodeJSON(r, &req); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	profile, err := h.Users.Load(req.UserID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) && !errors.Is(err, users.ErrInvalidUserID) {
			h.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("Error loading user")
		}
		api.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": profile})
}

func (h *Handlers) addUser(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := api.DecodeJSON(r, &profile); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	id, err := h.Users.Add(profile)
	if err != nil {
		h.Logger.Error().Err(err).Str("name", profile.Personal.Name).Msg("Error adding user")
		api.WriteError(w, http.StatusInternalServerError, "Could not save user data")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user_id": id})
}

func (h *Handlers) medicationInfo(w http.ResponseWriter, r *http.Request) {
	slot, err := api.IntParam(r, "slot")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid slot number")
		return
	}

	info, err := schedule.Medication(slot)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid slot number")
		return
	}
	api.WriteJSON(w, http.StatusOK, info)
}

func (h *Handlers) schedule(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, schedule.Today(h.now()))
}
