package metrics_collectors

import (
	"context"
	"runtime"

	"github.com/benmeehan/zima/internal/models"
)

// GoroutineMetricCollector reports how many goroutines the node runs. A steady climb
// usually means a stuck hardware or brain call.
type GoroutineMetricCollector struct{}

func (GoroutineMetricCollector) Name() string        { return "goroutines" }
func (GoroutineMetricCollector) Unit() string        { return "count" }
func (GoroutineMetricCollector) Description() string { return "Goroutines running in the node process." }

func (GoroutineMetricCollector) Collect(context.Context) *float64 {
	n := float64(runtime.NumGoroutine())
	return &n
}

func (GoroutineMetricCollector) IsEnabled(config *models.MetricsConfig) bool {
	return config.MonitorGoroutines
}
