package services

import (
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/clients"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryCleanupService_SweepOnce tests removal of clients idle beyond the threshold.
func TestRegistryCleanupService_SweepOnce(t *testing.T) {
	// Setup
	gate, err := clients.NewVersionGate(">= 1.0.0")
	require.NoError(t, err)
	registry, err := clients.NewRegistry(gate, constants.TargetCallerOrFirst, zerolog.Nop())
	require.NoError(t, err)

	payload := models.RegistrationPayload{ClientType: constants.ClientTypeRaspberryPi, ClientVersion: "1.0"}
	_, err = registry.Register("10.0.0.2", payload)
	require.NoError(t, err)
	_, err = registry.Register("10.0.0.3", payload)
	require.NoError(t, err)

	r := NewRegistryCleanupService(time.Hour, 10*time.Minute, registry, zerolog.Nop())

	// Execute: nothing is stale yet
	assert.Empty(t, r.SweepOnce())

	// Execute: eleven minutes later both are gone
	r.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	removed := r.SweepOnce()

	// Assert
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.3"}, removed)
	assert.Zero(t, registry.Count())
}

// TestRegistryCleanupService_StartStop tests the service lifecycle.
func TestRegistryCleanupService_StartStop(t *testing.T) {
	registry, err := clients.NewRegistry(nil, constants.TargetCallerOrFirst, zerolog.Nop())
	require.NoError(t, err)

	r := NewRegistryCleanupService(time.Hour, time.Minute, registry, zerolog.Nop())
	require.NoError(t, r.Start())
	assert.EqualError(t, r.Start(), "registry cleanup service is already running")
	require.NoError(t, r.Stop())
	assert.EqualError(t, r.Stop(), "registry cleanup service is not running")
}
