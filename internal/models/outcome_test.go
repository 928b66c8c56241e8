package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benmeehan/location-agent/internal/models"
)

// TestDeliveryOutcome_StatusText tests the status renderings, including
// the fixed 6-decimal coordinate precision.
func TestDeliveryOutcome_StatusText(t *testing.T) {
	sample := models.LocationSample{Latitude: 51.5074, Longitude: -0.1278}

	assert.Equal(t, "Location: 51.507400, -0.127800", models.Delivered(sample).StatusText())
	assert.Equal(t, "Upload failed: 403", models.RejectedByServer(sample, 403).StatusText())
	assert.Equal(t, "Network error: connection refused", models.TransportFailure(sample, "connection refused").StatusText())
	assert.Equal(t, "Upload skipped: no_device_id", models.SkippedDelivery("no_device_id").StatusText())
}

// TestOutcomeKind_String tests the metrics labels.
func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", models.OutcomeSuccess.String())
	assert.Equal(t, "rejected", models.OutcomeRejected.String())
	assert.Equal(t, "transport_error", models.OutcomeTransportError.String())
	assert.Equal(t, "skipped", models.OutcomeSkipped.String())
}

// TestLocationSample_Valid tests the coordinate range checks.
func TestLocationSample_Valid(t *testing.T) {
	assert.True(t, models.LocationSample{Latitude: 51.5074, Longitude: -0.1278}.Valid())
	assert.True(t, models.LocationSample{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, models.LocationSample{Latitude: 90.1, Longitude: 0.5}.Valid())
	assert.False(t, models.LocationSample{Latitude: 0.5, Longitude: -180.1}.Valid())
	assert.False(t, models.LocationSample{}.Valid(), "a (0,0) fix means no lock yet")
}
