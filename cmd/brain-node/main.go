package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/benmeehan/zima/internal/api/brain"
	"github.com/benmeehan/zima/internal/assistant"
	"github.com/benmeehan/zima/internal/clients"
	"github.com/benmeehan/zima/internal/dispatch"
	"github.com/benmeehan/zima/internal/llm"
	"github.com/benmeehan/zima/internal/metrics_collectors"
	"github.com/benmeehan/zima/internal/service_registry"
	"github.com/benmeehan/zima/internal/services"
	"github.com/benmeehan/zima/internal/users"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/benmeehan/zima/pkg/file"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/brain.yaml", "path to the brain node configuration file")
	flag.Parse()

	// Load configuration from file
	fileClient := file.NewFileService()
	config, err := utils.LoadBrainNodeConfig(*configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	logger := utils.NewLogger(config.Log, "brain-node")

	gate, err := clients.NewVersionGate(config.Clients.VersionConstraint)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid client version constraint")
	}
	registry, err := clients.NewRegistry(gate, config.Clients.TargetPolicy, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client registry")
	}
	executor := dispatch.NewExecutor(registry, config.Clients.Port, config.Clients.RequestTimeout, logger)

	ollama, err := llm.NewOllamaClient(config.Ollama.Host, config.Ollama.Model, config.Ollama.Timeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Ollama client")
	}
	if config.Ollama.PullOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), config.Ollama.Timeout)
		if err := ollama.Ensure(ctx); err != nil {
			// The node still serves hardware requests; chat reports the model as unavailable.
			logger.Error().Err(err).Str("model", ollama.Model()).Msg("Failed to prepare model")
		}
		cancel()
	}

	store, err := users.NewStore(filepath.Join(config.DataDir, "users"), fileClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open user store")
	}

	hostMetrics := services.NewHostMetricsService(
		config.Services.HostMetrics.Interval,
		config.Services.HostMetrics.Timeout,
		config.Services.HostMetrics.Monitor,
		metrics_collectors.NewDefaultRegistry(logger, config.Services.HostMetrics.Monitor.DiskPath),
		logger,
	)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(logger)
	err = serviceRegistry.RegisterServices([]service_registry.Definition{
		{
			Name:    "registry_cleanup",
			Enabled: true,
			Constructor: func() (service_registry.Service, error) {
				return services.NewRegistryCleanupService(config.Clients.SweepInterval,
					config.Clients.InactiveThreshold, registry, logger), nil
			},
		},
		{
			Name:    "host_metrics",
			Enabled: config.Services.HostMetrics.Enabled,
			Constructor: func() (service_registry.Service, error) {
				return hostMetrics, nil
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

	handlers := &brain.Handlers{
		Registry: registry,
		Executor: executor,
		Assistant: &assistant.Assistant{
			Profiles:  store,
			Targets:   registry,
			Executor:  executor,
			Generator: ollama,
			Logger:    logger,
		},
		Users:   store,
		LLM:     ollama,
		DataDir: config.DataDir,
		Logger:  logger,
	}
	if config.Services.HostMetrics.Enabled {
		handlers.Host = hostMetrics
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(config.HTTP.Host, strconv.Itoa(config.HTTP.Port)),
		Handler:           brain.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("model", ollama.Model()).Msg("Brain node listening")
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
}
