package metrics_collectors

import (
	"context"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/rs/zerolog"
)

// The registry manages the host metric collectors and samples them together.
type MetricsRegistry struct {
	collectors map[string]MetricCollector
}

// NewMetricsRegistry creates a new MetricsRegistry instance.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		collectors: make(map[string]MetricCollector),
	}
}

// NewDefaultRegistry registers every built-in collector.
func NewDefaultRegistry(logger zerolog.Logger, diskPath string) *MetricsRegistry {
	r := NewMetricsRegistry()
	r.Register(&CPUMetricCollector{Logger: logger})
	r.Register(&MemoryMetricCollector{Logger: logger})
	r.Register(&DiskMetricCollector{Logger: logger, Path: diskPath})
	r.Register(&UptimeMetricCollector{Logger: logger})
	r.Register(GoroutineMetricCollector{})
	return r
}

// Register adds a new metric collector to the registry.
func (r *MetricsRegistry) Register(collector MetricCollector) {
	r.collectors[collector.Name()] = collector
}

// GetCollectors returns all the metric collectors registered in the registry.
func (r *MetricsRegistry) GetCollectors() map[string]MetricCollector {
	return r.collectors
}

// Sample runs every enabled collector concurrently on pool and assembles a snapshot.
func (r *MetricsRegistry) Sample(ctx context.Context, config *models.MetricsConfig, pool *utils.WorkerPool) models.HostMetrics {
	snapshot := models.HostMetrics{Timestamp: time.Now().UTC()}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, collector := range r.collectors {
		if !collector.IsEnabled(config) {
			continue
		}
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			value := collector.Collect(ctx)

			mu.Lock()
			defer mu.Unlock()
			switch name {
			case "cpu":
				snapshot.CPUUsage = value
			case "memory":
				snapshot.Memory = value
			case "disk":
				snapshot.Disk = value
			case "uptime":
				snapshot.Uptime = value
			case "goroutines":
				snapshot.Goroutines = value
			}
		})
	}

	wg.Wait()
	return snapshot
}
