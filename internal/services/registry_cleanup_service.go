package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/metrics"
	"github.com/rs/zerolog"
)

// Sweeper removes registrations idle for longer than threshold.
type Sweeper interface {
	Sweep(now time.Time, threshold time.Duration) []string
	Count() int
}

// RegistryCleanupService drops hardware nodes that stopped re-registering.
type RegistryCleanupService struct {
	Interval  time.Duration
	Threshold time.Duration
	Registry  Sweeper
	Logger    zerolog.Logger

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistryCleanupService initializes a new RegistryCleanupService.
func NewRegistryCleanupService(interval, threshold time.Duration, registry Sweeper, logger zerolog.Logger) *RegistryCleanupService {
	return &RegistryCleanupService{
		Interval:  interval,
		Threshold: threshold,
		Registry:  registry,
		Logger:    logger,
		now:       time.Now,
	}
}

// Start sweeps once immediately, then on every tick.
func (r *RegistryCleanupService) Start() error {
	if r.ctx != nil {
		r.Logger.Warn().Msg("RegistryCleanupService is already running")
		return errors.New("registry cleanup service is already running")
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runSweepLoop()
	}()

	r.Logger.Info().Dur("interval", r.Interval).Dur("threshold", r.Threshold).Msg("RegistryCleanupService started successfully")
	return nil
}

// Stop gracefully stops the service.
func (r *RegistryCleanupService) Stop() error {
	if r.ctx == nil {
		r.Logger.Warn().Msg("RegistryCleanupService is not running")
		return errors.New("registry cleanup service is not running")
	}

	r.cancel()
	r.wg.Wait()

	r.ctx = nil
	r.cancel = nil

	r.Logger.Info().Msg("RegistryCleanupService stopped successfully")
	return nil
}

func (r *RegistryCleanupService) runSweepLoop() {
	r.SweepOnce()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.SweepOnce()
		case <-r.ctx.Done():
			r.Logger.Info().Msg("RegistryCleanupService stopping gracefully")
			return
		}
	}
}

// SweepOnce removes inactive clients and returns their addresses.
func (r *RegistryCleanupService) SweepOnce() []string {
	removed := r.Registry.Sweep(r.now(), r.Threshold)
	for _, address := range removed {
		r.Logger.Info().Str("client_ip", address).Msg("Removed inactive client")
	}
	if len(removed) > 0 {
		metrics.ClientsSwept.Add(float64(len(removed)))
	}
	metrics.RegisteredClients.Set(float64(r.Registry.Count()))
	return removed
}
