package services_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/location-agent/internal/services"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/tests/mocks"
)

type trackingFixture struct {
	service  *services.TrackingService
	sink     *mocks.RecordingSink
	callback func(location.Fix)
	requests *atomic.Int64
	server   *httptest.Server
}

// newTrackingFixture wires a tracking service against a mock provider and a
// real HTTP test server answering with the given status code.
func newTrackingFixture(t *testing.T, deviceID string, statusCode int) *trackingFixture {
	t.Helper()

	f := &trackingFixture{
		sink:     &mocks.RecordingSink{},
		requests: &atomic.Int64{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		w.WriteHeader(statusCode)
	}))
	t.Cleanup(f.server.Close)

	mockProvider := new(mocks.MockLocationProvider)
	mockChecker := new(mocks.MockPermissionChecker)
	mockChecker.On("Granted").Return(true)
	mockProvider.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			f.callback = args.Get(2).(func(location.Fix))
		}).
		Return(location.Handle(1), nil)
	mockProvider.On("Unsubscribe", location.Handle(1)).Return(nil)

	mockStore := new(mocks.MockIdentityStore)
	mockStore.On("Load").Return(identity.Identity{DeviceID: deviceID, NodeURL: f.server.URL}, nil)

	scheduler := services.NewSamplingScheduler(60*time.Second, 180*time.Second, mockProvider, mockChecker, zerolog.Nop())
	reporter := services.NewReporter(zerolog.Nop())
	f.service = services.NewTrackingService(scheduler, reporter, mockStore, f.sink, 2, zerolog.Nop())
	return f
}

func validFix() location.Fix {
	return location.Fix{Latitude: 51.5074, Longitude: -0.1278, Accuracy: 5, Altitude: 10, Valid: true}
}

// TestTrackingService_StartPublishesTrackingStatus tests the initial
// status surface after a successful start.
func TestTrackingService_StartPublishesTrackingStatus(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusOK)

	// Execute
	assert.NoError(t, f.service.Start())

	// Assert
	assert.Eventually(t, func() bool {
		return f.sink.Last() == "Tracking location..."
	}, time.Second, 10*time.Millisecond)

	// Cleanup
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_DeliversSampleAndPublishesLocation tests the full
// pipeline: fix in, upload out, success status surfaced.
func TestTrackingService_DeliversSampleAndPublishesLocation(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusOK)
	assert.NoError(t, f.service.Start())

	// Execute
	f.callback(validFix())

	// Assert
	assert.Eventually(t, func() bool {
		return f.sink.Last() == "Location: 51.507400, -0.127800"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), f.requests.Load())

	// Cleanup
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_SurfacesServerRejection tests that a 403 from the
// node ends up in the status text.
func TestTrackingService_SurfacesServerRejection(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusForbidden)
	assert.NoError(t, f.service.Start())

	// Execute
	f.callback(validFix())

	// Assert
	assert.Eventually(t, func() bool {
		return f.sink.Last() == "Upload failed: 403"
	}, 2*time.Second, 10*time.Millisecond)

	// Cleanup
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_SkipsUploadWithoutDeviceID tests that an unset
// device ID produces a skipped status and no network traffic.
func TestTrackingService_SkipsUploadWithoutDeviceID(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "", http.StatusOK)
	assert.NoError(t, f.service.Start())

	// Execute
	f.callback(validFix())

	// Assert
	assert.Eventually(t, func() bool {
		return f.sink.Last() == "Upload skipped: no_device_id"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), f.requests.Load())

	// Cleanup
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_StopEndsTheSession tests that stop surfaces the
// final status and late fixes produce no uploads.
func TestTrackingService_StopEndsTheSession(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusOK)
	assert.NoError(t, f.service.Start())

	// Execute
	assert.NoError(t, f.service.Stop())
	f.callback(validFix())

	// Assert
	texts := f.sink.Texts()
	assert.Contains(t, texts, "Tracking stopped")
	assert.Equal(t, int64(0), f.requests.Load())
}

// TestTrackingService_StopWithoutStart tests controller-level idempotence.
func TestTrackingService_StopWithoutStart(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusOK)

	// Execute + Assert
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_Start_AlreadyRunning tests the double-start guard.
func TestTrackingService_Start_AlreadyRunning(t *testing.T) {
	// Setup
	f := newTrackingFixture(t, "TRACK-001", http.StatusOK)
	assert.NoError(t, f.service.Start())

	// Execute
	err := f.service.Start()

	// Assert
	assert.Error(t, err)
	assert.Equal(t, "tracking service is already running", err.Error())

	// Cleanup
	assert.NoError(t, f.service.Stop())
}

// TestTrackingService_PermissionDenied tests that a denied permission
// surfaces exactly one skipped status and leaves the service stopped.
func TestTrackingService_PermissionDenied(t *testing.T) {
	// Setup
	sink := &mocks.RecordingSink{}
	mockProvider := new(mocks.MockLocationProvider)
	mockChecker := new(mocks.MockPermissionChecker)
	mockChecker.On("Granted").Return(false)

	mockStore := new(mocks.MockIdentityStore)
	mockStore.On("Load").Return(identity.Identity{DeviceID: "TRACK-001", NodeURL: identity.DefaultNodeURL}, nil)

	scheduler := services.NewSamplingScheduler(60*time.Second, 180*time.Second, mockProvider, mockChecker, zerolog.Nop())
	reporter := services.NewReporter(zerolog.Nop())
	svc := services.NewTrackingService(scheduler, reporter, mockStore, sink, 2, zerolog.Nop())

	// Execute
	err := svc.Start()

	// Assert
	assert.ErrorIs(t, err, services.ErrPermissionDenied)
	assert.Equal(t, []string{"Upload skipped: permission_denied"}, sink.Texts())
	mockProvider.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)

	// A later stop is still a safe no-op
	assert.NoError(t, svc.Stop())
}
