package metrics_collectors

import (
	"context"

	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/host"
)

// UptimeMetricCollector collects seconds since the host booted.
type UptimeMetricCollector struct {
	Logger zerolog.Logger
}

func (u *UptimeMetricCollector) Name() string {
	return "uptime"
}

func (u *UptimeMetricCollector) Collect(ctx context.Context) *float64 {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		u.Logger.Error().Err(err).Msg("Failed to get host uptime")
		return nil
	}
	seconds := float64(uptime)
	return &seconds
}

func (u *UptimeMetricCollector) IsEnabled(config *models.MetricsConfig) bool {
	return config.MonitorUptime
}

func (u *UptimeMetricCollector) Unit() string {
	return "seconds"
}

func (u *UptimeMetricCollector) Description() string {
	return "Seconds since the host booted."
}
