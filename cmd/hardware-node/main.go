package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	api "github.com/benmeehan/zima/internal/api/hardware"
	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/chatlog"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/hardware"
	"github.com/benmeehan/zima/internal/metrics_collectors"
	"github.com/benmeehan/zima/internal/notify"
	"github.com/benmeehan/zima/internal/responder"
	"github.com/benmeehan/zima/internal/service_registry"
	"github.com/benmeehan/zima/internal/services"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/benmeehan/zima/internal/weather"
	"github.com/benmeehan/zima/pkg/file"
	"github.com/benmeehan/zima/pkg/identity"
	"github.com/benmeehan/zima/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/hardware.yaml", "path to the hardware node configuration file")
	flag.Parse()

	// Load configuration from file
	fileClient := file.NewFileService()
	config, err := utils.LoadHardwareNodeConfig(*configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	logger := utils.NewLogger(config.Log, "hardware-node")

	// Initialize NodeInfo
	nodeInfo := identity.NewNodeInfo(config.Identity.NodeFile, fileClient)
	if err := nodeInfo.LoadNodeInfo(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load node information")
	}
	logger.Info().Str("instance_id", nodeInfo.GetInstanceID()).Msg("Node identity loaded")

	controller, err := hardware.NewControllerForMode(config.Hardware.Mode, hardware.PinConfig{
		Servo1:  config.Hardware.Servo1Pin,
		Servo2:  config.Hardware.Servo2Pin,
		Trigger: config.Hardware.TriggerPin,
		Echo:    config.Hardware.EchoPin,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize hardware")
	}
	logger.Info().Str("mode", controller.Mode()).Msg("Hardware initialized")

	weatherClient := weather.NewClient(config.Weather.APIKey, config.Weather.BaseURL,
		config.Weather.DefaultCity, config.Weather.Timeout, logger)
	brain := brainclient.NewClient(config.Brain.URL, config.Brain.RequestTimeout, config.Brain.ChatTimeout, logger)
	chat := chatlog.New()
	localIP := utils.LocalIP()

	sinks, mqttClient := notificationSinks(config, logger)
	notifier := services.NewNotificationService(config.Services.Notification.QueueSize, sinks, logger)

	registrar := services.NewRegistrationService(
		config.Services.Registration.MaxRetries,
		config.Services.Registration.BaseDelay,
		config.Services.Registration.MaxDelay,
		brain,
		nodeInfo,
		controller.Mode,
		func() string { return localIP },
		logger,
	)
	connection := services.NewConnectionMonitor(config.Services.Connection.Interval, brain, registrar, chat, logger)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(logger)
	err = serviceRegistry.RegisterServices([]service_registry.Definition{
		{
			Name:    "notification",
			Enabled: true,
			Constructor: func() (service_registry.Service, error) {
				return notifier, nil
			},
		},
		{
			Name:    "connection",
			Enabled: config.Services.Connection.Enabled,
			Constructor: func() (service_registry.Service, error) {
				return connection, nil
			},
		},
		{
			Name:    "medication",
			Enabled: config.Services.Medication.Enabled,
			Constructor: func() (service_registry.Service, error) {
				return services.NewMedicationMonitor(config.Services.Medication.Interval,
					config.Services.Medication.GracePeriod, brain, connection, notifier, logger), nil
			},
		},
		{
			Name:    "host_metrics",
			Enabled: config.Services.HostMetrics.Enabled,
			Constructor: func() (service_registry.Service, error) {
				hm := config.Services.HostMetrics
				return services.NewHostMetricsService(hm.Interval, hm.Timeout, hm.Monitor,
					metrics_collectors.NewDefaultRegistry(logger, hm.Monitor.DiskPath), logger), nil
			},
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Strs("services", serviceRegistry.Names()).Msg("All services started successfully")

	local := &responder.LocalResponder{
		Hardware:    controller,
		Weather:     weatherClient,
		DefaultCity: config.Weather.DefaultCity,
		Units:       "metric",
		Logger:      logger,
	}
	handlers := &api.Handlers{
		Hardware:   controller,
		Weather:    weatherClient,
		Chat:       chat,
		Notifier:   notifier,
		Brain:      brain,
		Connection: connection,
		Local:      local,
		Voice: &responder.VoiceRouter{
			Hardware:        controller,
			Weather:         weatherClient,
			Chat:            chat,
			Notifier:        notifier,
			Brain:           brain,
			Connection:      connection,
			Local:           local,
			DefaultCity:     config.Weather.DefaultCity,
			Units:           "metric",
			PickupThreshold: config.Hardware.PickupThresholdCM,
			Logger:          logger,
		},
		DefaultCity:     config.Weather.DefaultCity,
		PickupThreshold: config.Hardware.PickupThresholdCM,
		LocalIP:         localIP,
		Logger:          logger,
	}

	chat.System(constants.SenderSystem, "Hardware node started in "+controller.Mode()+" mode")

	server := &http.Server{
		Addr:              net.JoinHostPort(config.HTTP.Host, strconv.Itoa(config.HTTP.Port)),
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("brain", brain.URL()).Msg("Hardware node listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop services cleanly")
	}
	if err := controller.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to release hardware")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// notificationSinks builds the configured caregiver channels. A channel that fails to
// connect is skipped; with none left, notifications only reach the log.
func notificationSinks(config *utils.HardwareNodeConfig, logger zerolog.Logger) ([]notify.Sink, *mqtt.MqttService) {
	cfg := config.Services.Notification
	if !cfg.Enabled {
		return []notify.Sink{notify.LogSink{Logger: logger}}, nil
	}

	var sinks []notify.Sink
	if cfg.Telegram.Enabled {
		sink, err := notify.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.Telegram.APIEndpoint, config.Brain.RequestTimeout, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Telegram notifications disabled")
		} else {
			sinks = append(sinks, sink)
		}
	}

	var mqttClient *mqtt.MqttService
	if cfg.MQTT.Enabled {
		// Brokers reject a second session with the same client id
		clientID := cfg.MQTT.ClientID + "-" + uuid.New().String()
		client := mqtt.NewMqttService(config.Brain.RequestTimeout)
		if err := client.Initialize(cfg.MQTT.Broker, clientID, cfg.MQTT.CACertificate); err != nil {
			logger.Error().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT notifications disabled")
		} else {
			logger.Info().Str("client_id", clientID).Msg("Connected to MQTT broker")
			sinks = append(sinks, notify.NewMQTTSink(client, cfg.MQTT.Topic, cfg.MQTT.QOS, logger))
			mqttClient = client
		}
	}

	if len(sinks) == 0 {
		sinks = append(sinks, notify.LogSink{Logger: logger})
	}
	return sinks, mqttClient
}
