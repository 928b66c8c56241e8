package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/location-agent/internal/metrics"
	"github.com/benmeehan/location-agent/internal/service_registry"
	"github.com/benmeehan/location-agent/internal/services"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/benmeehan/location-agent/pkg/permissions"
	"github.com/benmeehan/location-agent/pkg/status"
)

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize the tracker identity store
	identityStore := identity.NewFileStore(config.Identity.StoreFile, fileClient)

	// Select the location capability and its permission check
	provider, permissionChecker, err := buildLocationProvider(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize location provider")
	}

	// Status sinks: the log always, MQTT when configured
	sinks := status.Multi{status.NewLogSink(logger)}

	var mqttClient *mqtt.MqttService
	if config.Status.MQTT.Enabled {
		mqttClient = mqtt.NewMqttService(fileClient)

		// Unique client ID per process so broker sessions never collide
		clientID := config.Status.MQTT.ClientID + "-" + uuid.New().String()
		err = mqttClient.Initialize(config.Status.MQTT.Broker, clientID, config.Status.MQTT.CACertificate)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}

		sinks = append(sinks, status.NewMQTTSink(config.Status.MQTT.Topic, config.Status.MQTT.QOS, mqttClient, logger))
	}

	// Expose pipeline metrics when enabled
	metrics.Register()
	if config.Metrics.Enabled {
		go serveMetrics(config.Metrics.Listen, logger)
	}

	scheduler := services.NewSamplingScheduler(
		config.Tracker.MinInterval,
		config.Tracker.TargetInterval,
		provider,
		permissionChecker,
		logger,
	)
	reporter := services.NewReporter(logger)
	tracking := services.NewTrackingService(scheduler, reporter, identityStore, sinks, config.Tracker.Workers, logger)

	// Create a new service registry and register the tracking service
	serviceRegistry := service_registry.NewServiceRegistry(logger)
	if config.Tracker.Enabled {
		serviceRegistry.RegisterService("tracking", tracking)
	}

	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop services cleanly")
	}
	if err := provider.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close location provider")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// buildLocationProvider wires the configured capability and the matching
// permission check.
func buildLocationProvider(config *utils.Config, logger zerolog.Logger) (location.Provider, permissions.Checker, error) {
	switch config.Tracker.Provider {
	case "sensor":
		provider := location.NewDeviceSensorProvider(config.Tracker.GPSDevicePort, config.Tracker.GPSDeviceBaudRate, logger)
		checker := permissions.DeviceAccess{Path: config.Tracker.GPSDevicePort}
		return provider, checker, nil
	case "geolocation":
		provider, err := location.NewGoogleGeolocationProvider(config.Tracker.MapsAPIKey, logger)
		if err != nil {
			return nil, nil, err
		}
		// API-based lookup needs no local device access
		return provider, permissions.Static(true), nil
	default:
		return nil, nil, fmt.Errorf("unknown location provider: %q", config.Tracker.Provider)
	}
}

// serveMetrics runs the debug listener with the metrics and health endpoints.
func serveMetrics(listen string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	logger.Info().Str("listen", listen).Msg("Serving metrics")
	if err := http.ListenAndServe(listen, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics listener failed")
	}
}
