package utils

import (
	"time"

	"github.com/benmeehan/location-agent/pkg/file"
)

// Defaults applied when the configuration file leaves tracker fields unset.
const (
	DefaultTargetInterval = 180 * time.Second // desired time between fixes
	DefaultMinInterval    = 60 * time.Second  // fastest allowed delivery of fixes
	DefaultWorkers        = 4
)

// Config represents the structure of the configuration file.
type Config struct {
	Identity struct {
		StoreFile string `yaml:"store_file"` // Path to the tracker identity store (device_id, minima_node_url)
	} `yaml:"identity"`

	Tracker struct {
		Enabled           bool          `yaml:"enabled"`         // Enable/disable the tracking service
		Provider          string        `yaml:"provider"`        // Location capability: "sensor" or "geolocation"
		TargetInterval    time.Duration `yaml:"target_interval"` // Desired time between fixes
		MinInterval       time.Duration `yaml:"min_interval"`    // Fastest allowed delivery of fixes
		Workers           int           `yaml:"workers"`         // Concurrent delivery tasks
		MapsAPIKey        string        `yaml:"maps_api_key"`    // Google maps API Key
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // The Baud rate for GPS sensor
		GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX Port where the GPS sensor is mounted
	} `yaml:"tracker"`

	Status struct {
		MQTT struct {
			Enabled       bool   `yaml:"enabled"`        // Mirror status text to an MQTT topic
			Broker        string `yaml:"broker"`         // MQTT broker address
			ClientID      string `yaml:"client_id"`      // MQTT client ID
			Topic         string `yaml:"topic"`          // Retained topic carrying the latest status
			QOS           int    `yaml:"qos"`            // MQTT QoS level for status messages
			CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate (empty for plain TCP)
		} `yaml:"mqtt"`
	} `yaml:"status"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"` // Expose prometheus metrics
		Listen  string `yaml:"listen"`  // Debug listen address, e.g. 127.0.0.1:9090
	} `yaml:"metrics"`
}

// LoadConfig loads the YAML configuration from the specified file and
// applies tracker defaults.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	if config.Tracker.TargetInterval <= 0 {
		config.Tracker.TargetInterval = DefaultTargetInterval
	}
	if config.Tracker.MinInterval <= 0 {
		config.Tracker.MinInterval = DefaultMinInterval
	}
	if config.Tracker.Workers <= 0 {
		config.Tracker.Workers = DefaultWorkers
	}

	return &config, nil
}
