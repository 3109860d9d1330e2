package models

import "time"

// MetricsConfig selects which host metrics are sampled.
type MetricsConfig struct {
	MonitorCPU        bool   `yaml:"cpu" json:"cpu"`
	MonitorMemory     bool   `yaml:"memory" json:"memory"`
	MonitorDisk       bool   `yaml:"disk" json:"disk"`
	MonitorUptime     bool   `yaml:"uptime" json:"uptime"`
	MonitorGoroutines bool   `yaml:"goroutines" json:"goroutines"`
	DiskPath          string `yaml:"disk_path" json:"disk_path"`
}

// HostMetrics is a snapshot of host resource usage reported by /api/system_status.
// Fields are nil when the metric is disabled or could not be read.
type HostMetrics struct {
	Timestamp  time.Time `json:"timestamp"`
	CPUUsage   *float64  `json:"cpu_usage,omitempty"`
	Memory     *float64  `json:"memory,omitempty"`
	Disk       *float64  `json:"disk,omitempty"`
	Uptime     *float64  `json:"uptime_seconds,omitempty"`
	Goroutines *float64  `json:"goroutines,omitempty"`
}
