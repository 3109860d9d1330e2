package clients

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyPayload is returned when a registration carries no client data.
	ErrEmptyPayload = errors.New("no client data provided")
	// ErrNoClients is returned when a target is requested from an empty registry.
	ErrNoClients = errors.New("no clients available")
	// ErrUnknownPolicy is returned for a target policy the registry does not implement.
	ErrUnknownPolicy = errors.New("unknown target policy")
)

// RegistryInterface is the view of the registry used by request handlers and the dispatcher.
type RegistryInterface interface {
	Register(address string, payload models.RegistrationPayload) (models.RegisteredClient, error)
	Get(address string) (models.RegisteredClient, bool)
	Touch(address string) bool
	List() map[string]models.RegisteredClient
	Count() int
	Target(caller string) (string, bool)
}

// Registry tracks hardware nodes by source address.
type Registry struct {
	clients cmap.ConcurrentMap[string, models.RegisteredClient]
	gate    *VersionGate
	policy  string
	now     func() time.Time
	Logger  zerolog.Logger
}

// NewRegistry creates an empty registry. A nil gate accepts every version.
func NewRegistry(gate *VersionGate, policy string, logger zerolog.Logger) (*Registry, error) {
	switch policy {
	case "":
		policy = constants.TargetCallerOrFirst
	case constants.TargetCallerOrFirst, constants.TargetCallerOrLatest:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}

	return &Registry{
		clients: cmap.New[models.RegisteredClient](),
		gate:    gate,
		policy:  policy,
		now:     time.Now,
		Logger:  logger,
	}, nil
}

// Register upserts the client at address and stamps it as seen now.
func (r *Registry) Register(address string, payload models.RegistrationPayload) (models.RegisteredClient, error) {
	if payload == (models.RegistrationPayload{}) {
		return models.RegisteredClient{}, ErrEmptyPayload
	}
	if r.gate != nil {
		if err := r.gate.Check(payload.ClientVersion); err != nil {
			return models.RegisteredClient{}, err
		}
	}

	client := models.RegisteredClient{
		Address:             address,
		RegistrationPayload: payload,
		LastSeen:            r.now(),
	}
	r.clients.Set(address, client)

	r.Logger.Info().
		Str("address", address).
		Str("client_type", payload.ClientType).
		Str("hardware_mode", payload.HardwareMode).
		Int("total", r.clients.Count()).
		Msg("Client registered")
	return client, nil
}

// Get returns the client registered at address.
func (r *Registry) Get(address string) (models.RegisteredClient, bool) {
	return r.clients.Get(address)
}

// Touch refreshes last_seen for a registered address and reports whether it was
// registered. Unknown addresses are not added.
func (r *Registry) Touch(address string) bool {
	client, ok := r.clients.Get(address)
	if !ok {
		return false
	}
	now := r.now()
	client.LastSeen = now

	r.clients.Upsert(address, client, func(exist bool, current, fresh models.RegisteredClient) models.RegisteredClient {
		if exist {
			current.LastSeen = now
			return current
		}
		return fresh
	})
	return true
}

// List returns a snapshot of all registered clients.
func (r *Registry) List() map[string]models.RegisteredClient {
	return r.clients.Items()
}

// Count returns the number of registered clients.
func (r *Registry) Count() int {
	return r.clients.Count()
}

// Sweep removes clients not seen for longer than threshold and returns their addresses.
// Each removal re-checks last_seen under the shard lock, so a registration racing the
// sweep keeps its entry.
func (r *Registry) Sweep(now time.Time, threshold time.Duration) []string {
	var removed []string
	for _, address := range r.clients.Keys() {
		gone := r.clients.RemoveCb(address, func(_ string, client models.RegisteredClient, exists bool) bool {
			return exists && now.Sub(client.LastSeen) > threshold
		})
		if gone {
			removed = append(removed, address)
		}
	}
	sort.Strings(removed)
	return removed
}

// Target picks the node a function call should run on. The caller wins when it is
// registered itself; otherwise the configured policy decides.
func (r *Registry) Target(caller string) (string, bool) {
	if _, ok := r.clients.Get(caller); ok {
		return caller, true
	}

	items := r.clients.Items()
	if len(items) == 0 {
		return "", false
	}

	if r.policy == constants.TargetCallerOrLatest {
		var (
			latest string
			seen   time.Time
		)
		for address, client := range items {
			if latest == "" || client.LastSeen.After(seen) || (client.LastSeen.Equal(seen) && address < latest) {
				latest, seen = address, client.LastSeen
			}
		}
		return latest, true
	}

	addresses := make([]string, 0, len(items))
	for address := range items {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses[0], true
}
