package metrics_collectors

import (
	"context"
	"testing"

	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCollector struct {
	name  string
	value *float64
}

func (f *fixedCollector) Name() string { return f.name }

func (f *fixedCollector) Collect(context.Context) *float64 { return f.value }

func (f *fixedCollector) IsEnabled(c *models.MetricsConfig) bool { return f.name != "disk" || c.MonitorDisk }

func (f *fixedCollector) Unit() string { return "percentage" }

func (f *fixedCollector) Description() string { return "" }

func TestSample_AssemblesEnabledCollectors(t *testing.T) {
	cpu, mem, disk := 12.5, 40.0, 70.0
	r := NewMetricsRegistry()
	r.Register(&fixedCollector{name: "cpu", value: &cpu})
	r.Register(&fixedCollector{name: "memory", value: &mem})
	r.Register(&fixedCollector{name: "disk", value: &disk})

	pool := utils.NewWorkerPool(2)
	defer pool.Shutdown()

	snapshot := r.Sample(context.Background(), &models.MetricsConfig{}, pool)
	require.NotNil(t, snapshot.CPUUsage)
	assert.Equal(t, 12.5, *snapshot.CPUUsage)
	assert.Equal(t, 40.0, *snapshot.Memory)
	assert.Nil(t, snapshot.Disk)
	assert.False(t, snapshot.Timestamp.IsZero())
}

func TestDefaultRegistry_GoroutinesOnly(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop(), "/")
	assert.Len(t, r.GetCollectors(), 5)

	pool := utils.NewWorkerPool(1)
	defer pool.Shutdown()

	snapshot := r.Sample(context.Background(), &models.MetricsConfig{MonitorGoroutines: true}, pool)
	require.NotNil(t, snapshot.Goroutines)
	assert.Greater(t, *snapshot.Goroutines, 0.0)
	assert.Nil(t, snapshot.CPUUsage)
}
