package hardware

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/chatlog"
	hw "github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/responder"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/rs/zerolog"
)

// VoiceHandler answers transcribed voice commands.
type VoiceHandler interface {
	Handle(ctx context.Context, command string) string
}

// LocalAnswerer produces replies without the brain node.
type LocalAnswerer interface {
	Respond(ctx context.Context, text string) string
}

// Handlers holds dependencies for the hardware node's HTTP handlers.
type Handlers struct {
	Hardware        hw.HardwareInterface
	Weather         weather.Fetcher
	Chat            *chatlog.Log
	Notifier        responder.Notifier
	Brain           brainclient.BrainAPI
	Connection      responder.ConnectionState
	Local           LocalAnswerer
	Voice           VoiceHandler
	DefaultCity     string
	PickupThreshold float64
	LocalIP         string
	Logger          zerolog.Logger

	tmpl *template.Template
	now  func() time.Time
}

// NewRouter creates the chi router serving the hardware node's page and API.
func NewRouter(h *Handlers) http.Handler {
	if h.now == nil {
		h.now = time.Now
	}
	h.tmpl = template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"))

	r := api.NewRouter(h.Logger)
	r.Get("/", h.index)

	// Hardware
	r.Post("/dispense/{compartment}", h.dispense)
	r.Get("/distance", h.distance)
	r.Get("/check_pill_pickup", h.checkPillPickup)
	r.Post("/servo_rotate", h.servoRotate)
	r.Get("/servo_position/{servo}", h.servoPosition)
	r.Post("/function_call", h.functionCall)
	r.Get("/weather", h.weather)

	// Conversation
	r.Post("/llm_response", h.llmResponse)
	r.Post("/voice_command", h.voiceCommand)

	// Alerts
	r.Post("/emergency", h.emergency)
	r.Post("/emergency_alert", h.emergencyAlert)

	// Users, medication and brain link
	r.Post("/select_user", h.selectUser)
	r.Post("/add_user", h.addUser)
	r.Get("/get_medication_info/{slot}", h.medicationInfo)
	r.Get("/get_schedule", h.schedule)
	r.Get("/connection_status", h.connectionStatus)

	return r
}
