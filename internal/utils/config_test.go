package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/file"
)

// TestLoadConfig_AppliesTrackerDefaults tests that unset intervals and
// worker counts fall back to the defaults.
func TestLoadConfig_AppliesTrackerDefaults(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
identity:
  store_file: "tracker.json"
tracker:
  enabled: true
  provider: "sensor"
`), 0600))

	// Execute
	config, err := utils.LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 180*time.Second, config.Tracker.TargetInterval)
	assert.Equal(t, 60*time.Second, config.Tracker.MinInterval)
	assert.Equal(t, 4, config.Tracker.Workers)
	assert.Equal(t, "tracker.json", config.Identity.StoreFile)
}

// TestLoadConfig_ReadsTrackerSettings tests a fully specified tracker section.
func TestLoadConfig_ReadsTrackerSettings(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tracker:
  provider: "geolocation"
  target_interval: 5m
  min_interval: 90s
  workers: 2
status:
  mqtt:
    enabled: true
    broker: "tls://broker:8883"
    topic: "agents/location/status"
`), 0600))

	// Execute
	config, err := utils.LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "geolocation", config.Tracker.Provider)
	assert.Equal(t, 5*time.Minute, config.Tracker.TargetInterval)
	assert.Equal(t, 90*time.Second, config.Tracker.MinInterval)
	assert.Equal(t, 2, config.Tracker.Workers)
	assert.True(t, config.Status.MQTT.Enabled)
	assert.Equal(t, "agents/location/status", config.Status.MQTT.Topic)
}

// TestLoadConfig_MissingFile tests the error path.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := utils.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), file.NewFileService())
	assert.Error(t, err)
}
