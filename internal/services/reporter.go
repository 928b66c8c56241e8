package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/identity"
)

// connectTimeout bounds connection establishment. There is no separate
// response deadline; a connected call that hangs is cut off only by the
// session context when tracking stops.
const connectTimeout = 10 * time.Second

// Reporter delivers location samples to the remote node over HTTP.
// At-most-once: one POST per sample, no retries, no queueing.
type Reporter struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewReporter creates a new Reporter instance.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
		logger: logger,
	}
}

// Report builds the wire payload for one sample, attempts exactly one
// transmission and classifies the result. Every failure becomes an outcome;
// nothing escapes as a fault.
func (r *Reporter) Report(ctx context.Context, sample models.LocationSample, ident identity.Identity) models.DeliveryOutcome {
	if ident.DeviceID == "" {
		return models.SkippedDelivery(constants.SkipReasonNoDeviceID)
	}

	update := models.LocationUpdate{
		DeviceID:  ident.DeviceID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Accuracy:  sample.AccuracyMeters,
		Altitude:  sample.AltitudeMeters,
		Speed:     sample.SpeedMps,
		Timestamp: time.Now().UnixMilli(), // stamped at send time, matching the node's expectation
		Source:    constants.PayloadSource,
	}

	payload, err := json.Marshal(update)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to serialize location update")
		return models.TransportFailure(sample, err.Error())
	}

	url := strings.TrimSuffix(ident.NodeURL, "/") + constants.LocationUpdatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.TransportFailure(sample, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Str("url", url).Msg("Location upload failed")
		return models.TransportFailure(sample, err.Error())
	}
	defer resp.Body.Close()

	// The node's response body is ignored; only the status code matters.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		r.logger.Debug().
			Float64("latitude", sample.Latitude).
			Float64("longitude", sample.Longitude).
			Msg("Location uploaded successfully")
		return models.Delivered(sample)
	}

	r.logger.Warn().
		Int("status_code", resp.StatusCode).
		Str("url", url).
		Msg("Location upload rejected by node")
	return models.RejectedByServer(sample, resp.StatusCode)
}
