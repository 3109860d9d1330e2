package utils

import (
	"time"

	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/pkg/file"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name (debug, info, warn, ...)
	Pretty bool   `yaml:"pretty"` // human-readable console output instead of JSON
}

// HTTPConfig controls the HTTP listener.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HostMetricsConfig controls periodic sampling of host resource usage.
type HostMetricsConfig struct {
	Enabled  bool                 `yaml:"enabled"`
	Interval time.Duration        `yaml:"interval"` // Interval between samples
	Timeout  time.Duration        `yaml:"timeout"`  // Upper bound for one round of collection
	Monitor  models.MetricsConfig `yaml:"monitor"`
}

// HardwareNodeConfig represents the configuration file of the hardware node.
type HardwareNodeConfig struct {
	Log  LogConfig  `yaml:"log"`
	HTTP HTTPConfig `yaml:"http"`

	Identity struct {
		NodeFile string `yaml:"node_file"` // Path to the persisted instance identity
	} `yaml:"identity"`

	Brain struct {
		URL            string        `yaml:"url"`             // Base URL of the brain node
		RequestTimeout time.Duration `yaml:"request_timeout"` // Timeout for regular API calls
		ChatTimeout    time.Duration `yaml:"chat_timeout"`    // Timeout for chat calls, which wait on the LLM
	} `yaml:"brain"`

	Hardware struct {
		Mode              string  `yaml:"mode"`                // auto, real or mock
		Servo1Pin         string  `yaml:"servo1_pin"`          // BCM name of servo 1 PWM pin
		Servo2Pin         string  `yaml:"servo2_pin"`          // BCM name of servo 2 PWM pin
		TriggerPin        string  `yaml:"trigger_pin"`         // Ultrasonic trigger pin
		EchoPin           string  `yaml:"echo_pin"`            // Ultrasonic echo pin
		PickupThresholdCM float64 `yaml:"pickup_threshold_cm"` // Below this distance a pill counts as picked up
	} `yaml:"hardware"`

	Weather struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		DefaultCity string        `yaml:"default_city"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"weather"`

	Services struct {
		Connection struct {
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval"` // Interval between brain heartbeat probes
		} `yaml:"connection"`

		Registration struct {
			MaxRetries int           `yaml:"max_retries"` // Extra attempts after the first failed registration
			BaseDelay  time.Duration `yaml:"base_delay"`
			MaxDelay   time.Duration `yaml:"max_delay"`
		} `yaml:"registration"`

		Medication struct {
			Enabled     bool          `yaml:"enabled"`
			Interval    time.Duration `yaml:"interval"`     // Interval between schedule scans
			GracePeriod time.Duration `yaml:"grace_period"` // How late a dose may be before it counts as missed
		} `yaml:"medication"`

		Notification struct {
			Enabled   bool `yaml:"enabled"`
			QueueSize int  `yaml:"queue_size"` // Outgoing notifications buffered before dropping

			Telegram struct {
				Enabled     bool   `yaml:"enabled"`
				BotToken    string `yaml:"bot_token"`
				ChatID      string `yaml:"chat_id"` // Numeric chat id or @channel name
				APIEndpoint string `yaml:"api_endpoint"`
			} `yaml:"telegram"`

			MQTT struct {
				Enabled       bool   `yaml:"enabled"`
				Broker        string `yaml:"broker"`
				ClientID      string `yaml:"client_id"`
				CACertificate string `yaml:"ca_certificate"`
				Topic         string `yaml:"topic"`
				QOS           int    `yaml:"qos"`
			} `yaml:"mqtt"`
		} `yaml:"notification"`

		HostMetrics HostMetricsConfig `yaml:"host_metrics"`
	} `yaml:"services"`
}

// BrainNodeConfig represents the configuration file of the brain node.
type BrainNodeConfig struct {
	Log     LogConfig  `yaml:"log"`
	HTTP    HTTPConfig `yaml:"http"`
	DataDir string     `yaml:"data_dir"` // Root of persisted state; users live in <data_dir>/users

	Ollama struct {
		Host        string        `yaml:"host"`
		Model       string        `yaml:"model"`
		PullOnStart bool          `yaml:"pull_on_start"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"ollama"`

	Clients struct {
		Port              int           `yaml:"port"`               // Port hardware nodes listen on
		RequestTimeout    time.Duration `yaml:"request_timeout"`    // Timeout for forwarded function calls
		InactiveThreshold time.Duration `yaml:"inactive_threshold"` // Liveness window for registered clients
		SweepInterval     time.Duration `yaml:"sweep_interval"`     // How often inactive clients are removed
		TargetPolicy      string        `yaml:"target_policy"`      // caller-or-first or caller-or-latest
		VersionConstraint string        `yaml:"version_constraint"` // semver constraint client versions must satisfy
	} `yaml:"clients"`

	Services struct {
		HostMetrics HostMetricsConfig `yaml:"host_metrics"`
	} `yaml:"services"`
}

// DefaultHardwareNodeConfig returns the hardware node configuration used when a key is absent.
func DefaultHardwareNodeConfig() *HardwareNodeConfig {
	cfg := &HardwareNodeConfig{}
	cfg.Log.Level = "info"
	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = 5001
	cfg.Identity.NodeFile = "node.json"

	cfg.Brain.URL = "http://127.0.0.1:5000"
	cfg.Brain.RequestTimeout = 10 * time.Second
	cfg.Brain.ChatTimeout = 250 * time.Second

	cfg.Hardware.Mode = "auto"
	cfg.Hardware.Servo1Pin = "GPIO12"
	cfg.Hardware.Servo2Pin = "GPIO23"
	cfg.Hardware.TriggerPin = "GPIO21"
	cfg.Hardware.EchoPin = "GPIO20"
	cfg.Hardware.PickupThresholdCM = 10

	cfg.Weather.BaseURL = "http://api.openweathermap.org/data/2.5/weather"
	cfg.Weather.DefaultCity = "London"
	cfg.Weather.Timeout = 10 * time.Second

	cfg.Services.Connection.Enabled = true
	cfg.Services.Connection.Interval = 30 * time.Second
	cfg.Services.Registration.MaxRetries = 2
	cfg.Services.Registration.BaseDelay = time.Second
	cfg.Services.Registration.MaxDelay = 10 * time.Second
	cfg.Services.Medication.Enabled = true
	cfg.Services.Medication.Interval = 15 * time.Minute
	cfg.Services.Medication.GracePeriod = 30 * time.Minute
	cfg.Services.Notification.Enabled = true
	cfg.Services.Notification.QueueSize = 32
	cfg.Services.Notification.MQTT.ClientID = "zima-hardware"
	cfg.Services.Notification.MQTT.Topic = "zima/alerts"
	cfg.Services.Notification.MQTT.QOS = 1
	cfg.Services.HostMetrics = defaultHostMetrics()
	return cfg
}

// DefaultBrainNodeConfig returns the brain node configuration used when a key is absent.
func DefaultBrainNodeConfig() *BrainNodeConfig {
	cfg := &BrainNodeConfig{}
	cfg.Log.Level = "info"
	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = 5000
	cfg.DataDir = "zima_data"

	cfg.Ollama.Host = "http://localhost:11434"
	cfg.Ollama.Model = "deepseek-r1:8b"
	cfg.Ollama.PullOnStart = true
	cfg.Ollama.Timeout = 240 * time.Second

	cfg.Clients.Port = 5001
	cfg.Clients.RequestTimeout = 10 * time.Second
	cfg.Clients.InactiveThreshold = 10 * time.Minute
	cfg.Clients.SweepInterval = 5 * time.Minute
	cfg.Clients.TargetPolicy = "caller-or-first"
	cfg.Clients.VersionConstraint = ">= 1.0.0"
	cfg.Services.HostMetrics = defaultHostMetrics()
	return cfg
}

func defaultHostMetrics() HostMetricsConfig {
	return HostMetricsConfig{
		Enabled:  true,
		Interval: time.Minute,
		Timeout:  10 * time.Second,
		Monitor: models.MetricsConfig{
			MonitorCPU:    true,
			MonitorMemory: true,
			MonitorDisk:   true,
			MonitorUptime: true,
			DiskPath:      "/",
		},
	}
}

// LoadHardwareNodeConfig loads the YAML configuration from the specified file on top of the defaults.
func LoadHardwareNodeConfig(filename string, fileClient file.FileOperations) (*HardwareNodeConfig, error) {
	config := DefaultHardwareNodeConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadBrainNodeConfig loads the YAML configuration from the specified file on top of the defaults.
func LoadBrainNodeConfig(filename string, fileClient file.FileOperations) (*BrainNodeConfig, error) {
	config := DefaultBrainNodeConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, err
	}
	return config, nil
}
