package hardware

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/benmeehan/zima/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"isUser": func(t string) bool { return t == "user" },
}

const defaultUserID = "1"

// offlineUsers is shown while the brain node is unreachable.
var offlineUsers = []models.UserProfile{{
	ID:       defaultUserID,
	Personal: models.PersonalInfo{Name: "Default User", Age: 40, Gender: "Unknown"},
	Medications: []models.Medication{
		{Name: "Paracetamol", Dosage: "500mg", Schedule: "As needed", Slot: 1},
		{Name: "Antibiotic", Dosage: "250mg", Schedule: "Every 8 hours", Slot: 2},
	},
}}

type indexPage struct {
	ChatHistory     []models.ChatEntry
	User            models.UserProfile
	CurrentUser     string
	UserOptions     []models.UserOption
	ServerConnected bool
	ServerURL       string
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	connected := h.Connection.Connected()

	profiles := offlineUsers
	if connected {
		list, err := h.Brain.Users(r.Context())
		if err != nil {
			h.Logger.Warn().Err(err).Msg("Failed to get user data from server for index page")
			profiles = nil
		} else {
			profiles = list
		}
	}

	page := indexPage{
		ChatHistory:     h.Chat.Entries(),
		CurrentUser:     defaultUserID,
		ServerConnected: connected,
		ServerURL:       h.Brain.URL(),
	}
	for _, p := range profiles {
		name := p.Personal.Name
		if name == "" {
			name = "Unknown"
		}
		page.UserOptions = append(page.UserOptions, models.UserOption{ID: p.ID, Name: name})
		if p.ID == defaultUserID {
			page.User = p
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		h.Logger.Error().Err(err).Msg("Error rendering index page")
		http.Error(w, "Error loading page", http.StatusInternalServerError)
	}
}
