package brain

import (
	"context"
	"net/http"
	"time"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/assistant"
	"github.com/benmeehan/zima/internal/clients"
	"github.com/benmeehan/zima/internal/llm"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// isoTime matches the timestamps hardware nodes already parse.
const isoTime = "2006-01-02T15:04:05.000000"

// NodeExecutor runs requests against registered hardware nodes.
type NodeExecutor interface {
	Execute(ctx context.Context, function string, args map[string]any, target string) (map[string]any, error)
	ServoPosition(ctx context.Context, target string, servo int) (map[string]any, error)
	Alert(ctx context.Context, target string, event models.EmergencyEvent) error
}

// Chatter answers chat messages.
type Chatter interface {
	Chat(ctx context.Context, caller, userID, message string) assistant.Reply
	Respond(ctx context.Context, caller, prompt string) assistant.Reply
}

// HostMetricsSource provides the latest host usage sample.
type HostMetricsSource interface {
	Latest() models.HostMetrics
}

// Handlers holds dependencies for the brain node's HTTP handlers.
type Handlers struct {
	Registry  clients.RegistryInterface
	Executor  NodeExecutor
	Assistant Chatter
	Users     users.StoreInterface
	LLM       llm.Generator
	Host      HostMetricsSource // optional
	DataDir   string
	Logger    zerolog.Logger

	started time.Time
	now     func() time.Time
	router  chi.Router
}

// NewRouter creates the chi router serving the brain node API.
func NewRouter(h *Handlers) http.Handler {
	if h.now == nil {
		h.now = time.Now
	}
	h.started = h.now()

	r := api.NewRouter(h.Logger)
	h.router = r

	r.Route("/api", func(r chi.Router) {
		// Hardware nodes
		r.Get("/heartbeat", h.heartbeat)
		r.Post("/register_client", h.registerClient)
		r.Get("/clients", h.listClients)
		r.Get("/available_functions", h.availableFunctions)
		r.Post("/execute_function", h.executeFunction)

		// Chat
		r.Post("/chat", h.chat)

		// Manual control
		r.Post("/servo_rotate", h.servoRotate)
		r.Get("/servo_position/{servo}", h.servoPosition)
		r.Post("/dispense/{slot}", h.dispense)
		r.Get("/check_pill_pickup", h.checkPillPickup)
		r.Get("/weather", h.weather)
		r.Post("/emergency", h.emergency)

		// Users and medication
		r.Get("/users", h.listUsers)
		r.Post("/users/save", h.saveUser)
		r.Post("/select_user", h.selectUser)
		r.Post("/add_user", h.addUser)
		r.Get("/get_medication_info/{slot}", h.medicationInfo)
		r.Get("/get_schedule", h.schedule)

		// Diagnostics
		r.Get("/system_status", h.systemStatus)
		r.Get("/debug/routes", h.debugRoutes)
	})

	r.Post("/chat", h.chat)
	r.Post("/simple_chat", h.simpleChat)
	r.Get("/check_pill_pickup", h.checkPillPickup)

	return r
}
