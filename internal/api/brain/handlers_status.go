package brain

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/benmeehan/zima/internal/api"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/dispatch"
	"github.com/go-chi/chi/v5"
)

const llmStatusTimeout = 5 * time.Second

type routeInfo struct {
	Rule    string   `json:"rule"`
	Methods []string `json:"methods"`
}

func (h *Handlers) systemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), llmStatusTimeout)
	defer cancel()

	usersCount := 0
	if profiles, err := h.Users.List(); err == nil {
		usersCount = len(profiles)
	} else {
		h.Logger.Warn().Err(err).Msg("Could not count users")
	}

	functions := dispatch.FunctionNames()
	status := map[string]any{
		"success": true,
		"server": map[string]any{
			"status":             "online",
			"uptime":             h.now().Sub(h.started).Round(time.Second).String(),
			"version":            constants.ServerVersion,
			"registered_clients": h.Registry.Count(),
		},
		"llm": map[string]any{
			"status": h.LLM.Status(ctx),
			"model":  h.LLM.Model(),
		},
		"storage": map[string]any{
			"users_count": usersCount,
			"data_dir":    h.DataDir,
		},
		"functions": map[string]any{
			"available": functions,
			"count":     len(functions),
		},
	}
	if h.Host != nil {
		status["host"] = h.Host.Latest()
	}

	api.WriteJSON(w, http.StatusOK, status)
}

func (h *Handlers) debugRoutes(w http.ResponseWriter, r *http.Request) {
	byRule := map[string][]string{}
	err := chi.Walk(h.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		byRule[route] = append(byRule[route], method)
		return nil
	})
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	routes := make([]routeInfo, 0, len(byRule))
	chatRoutes := []routeInfo{}
	for rule, methods := range byRule {
		sort.Strings(methods)
		info := routeInfo{Rule: rule, Methods: methods}
		routes = append(routes, info)
		if strings.Contains(strings.ToLower(rule), "chat") {
			chatRoutes = append(chatRoutes, info)
		}
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Rule < routes[j].Rule })
	sort.Slice(chatRoutes, func(i, j int) bool { return chatRoutes[i].Rule < chatRoutes[j].Rule })

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"total_routes": len(routes),
		"routes":       routes,
		"chat_routes":  chatRoutes,
	})
}
