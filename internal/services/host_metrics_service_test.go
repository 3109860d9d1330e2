package services

import (
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/metrics_collectors"
	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHostMetricsService_SamplesOnStart tests that a snapshot is available right after Start.
func TestHostMetricsService_SamplesOnStart(t *testing.T) {
	// Setup
	registry := metrics_collectors.NewMetricsRegistry()
	registry.Register(metrics_collectors.GoroutineMetricCollector{})
	h := NewHostMetricsService(time.Hour, time.Second, models.MetricsConfig{MonitorGoroutines: true}, registry, zerolog.Nop())

	assert.True(t, h.Latest().Timestamp.IsZero())

	// Execute
	require.NoError(t, h.Start())
	defer h.Stop()

	// Assert
	latest := h.Latest()
	assert.False(t, latest.Timestamp.IsZero())
	require.NotNil(t, latest.Goroutines)
	assert.Greater(t, *latest.Goroutines, 0.0)
	assert.Nil(t, latest.CPUUsage)
}
