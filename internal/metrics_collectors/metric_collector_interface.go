package metrics_collectors

import (
	"context"

	"github.com/benmeehan/zima/internal/models"
)

// MetricCollector defines the interface for collecting a specific host metric.
type MetricCollector interface {
	Name() string                                // Name of the metric (e.g., "cpu", "memory")
	Collect(ctx context.Context) *float64        // Collect the metric; nil when it could not be read
	IsEnabled(config *models.MetricsConfig) bool // Check if the metric is enabled in the config
	Unit() string                                // Unit of the metric (e.g., "percentage", "seconds")
	Description() string                         // Description of the metric
}
