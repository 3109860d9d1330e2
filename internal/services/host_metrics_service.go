package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/metrics_collectors"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/rs/zerolog"
)

// HostMetricsService samples host resource usage, keeps the latest snapshot for status
// endpoints and mirrors it into the exported gauges.
type HostMetricsService struct {
	interval   time.Duration
	timeout    time.Duration
	config     models.MetricsConfig
	registry   *metrics_collectors.MetricsRegistry
	workerPool *utils.WorkerPool
	logger     zerolog.Logger

	mu     sync.RWMutex
	latest models.HostMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHostMetricsService initializes and returns a new instance of HostMetricsService.
func NewHostMetricsService(interval, timeout time.Duration, config models.MetricsConfig,
	registry *metrics_collectors.MetricsRegistry, logger zerolog.Logger) *HostMetricsService {

	return &HostMetricsService{
		interval: interval,
		timeout:  timeout,
		config:   config,
		registry: registry,
		logger:   logger,
	}
}

// Start samples once synchronously so the first status request has data, then periodically.
func (h *HostMetricsService) Start() error {
	if h.ctx != nil {
		h.logger.Warn().Msg("HostMetricsService is already running")
		return errors.New("host metrics service is already running")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.workerPool = utils.NewWorkerPool(len(h.registry.GetCollectors()))

	h.Collect()

	h.wg.Add(1)
	go h.runCollectionLoop()

	h.logger.Info().Dur("interval", h.interval).Msg("HostMetricsService started successfully")
	return nil
}

// Stop gracefully stops the service.
func (h *HostMetricsService) Stop() error {
	if h.ctx == nil {
		h.logger.Warn().Msg("HostMetricsService is not running")
		return errors.New("host metrics service is not running")
	}

	h.cancel()
	h.wg.Wait()
	h.workerPool.Shutdown()

	h.ctx = nil
	h.cancel = nil

	h.logger.Info().Msg("HostMetricsService stopped successfully")
	return nil
}

// Latest returns the most recent snapshot, zero before the first sample.
func (h *HostMetricsService) Latest() models.HostMetrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *HostMetricsService) runCollectionLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Collect()
		case <-h.ctx.Done():
			h.logger.Info().Msg("Stopping host metrics collection")
			return
		}
	}
}

// Collect takes one sample. The service must be started.
func (h *HostMetricsService) Collect() models.HostMetrics {
	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	snapshot := h.registry.Sample(ctx, &h.config, h.workerPool)

	h.mu.Lock()
	h.latest = snapshot
	h.mu.Unlock()

	export("cpu", snapshot.CPUUsage)
	export("memory", snapshot.Memory)
	export("disk", snapshot.Disk)
	export("uptime", snapshot.Uptime)
	export("goroutines", snapshot.Goroutines)

	h.logger.Debug().Interface("metrics", snapshot).Msg("Host metrics collected successfully")
	return snapshot
}

func export(resource string, value *float64) {
	if value != nil {
		metrics.HostUsage.WithLabelValues(resource).Set(*value)
	}
}
