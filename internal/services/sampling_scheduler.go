package services

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/pkg/permissions"
)

// ErrPermissionDenied is returned by Start when the location capability is
// not accessible. The scheduler stays Idle; the caller decides when to try
// again, there is no retry loop.
var ErrPermissionDenied = errors.New("location permission denied")

// SessionState is the tracking session state machine.
type SessionState int

const (
	// SessionIdle means no provider subscription is held
	SessionIdle SessionState = iota
	// SessionActive means fixes are being forwarded downstream
	SessionActive
	// SessionStopping means the provider subscription is being torn down
	SessionStopping
)

// SamplingScheduler subscribes to a location provider and forwards each
// valid fix downstream, one sample per fix, without buffering or local rate
// limiting. The cadence contract (minimum and target interval) is passed to
// the provider and enforced there.
type SamplingScheduler struct {
	minInterval    time.Duration
	targetInterval time.Duration

	provider   location.Provider
	permission permissions.Checker
	logger     zerolog.Logger

	mu         sync.Mutex
	state      SessionState
	handle     location.Handle
	generation uint64
}

// NewSamplingScheduler creates a new SamplingScheduler instance.
func NewSamplingScheduler(minInterval, targetInterval time.Duration, provider location.Provider,
	permission permissions.Checker, logger zerolog.Logger) *SamplingScheduler {
	return &SamplingScheduler{
		minInterval:    minInterval,
		targetInterval: targetInterval,
		provider:       provider,
		permission:     permission,
		logger:         logger,
	}
}

// State returns the current session state.
func (s *SamplingScheduler) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions Idle -> Active and begins forwarding fixes to onSample.
// A denied permission check leaves the scheduler Idle and returns
// ErrPermissionDenied.
func (s *SamplingScheduler) Start(onSample func(models.LocationSample)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionIdle {
		s.logger.Warn().Msg("SamplingScheduler is already running")
		return errors.New("sampling scheduler is already running")
	}

	if !s.permission.Granted() {
		s.logger.Warn().Msg("Location permission not granted, scheduler stays idle")
		return ErrPermissionDenied
	}

	s.generation++
	generation := s.generation

	handle, err := s.provider.Subscribe(s.minInterval, s.targetInterval, func(fix location.Fix) {
		s.forward(generation, fix, onSample)
	})
	if err != nil {
		return err
	}

	s.handle = handle
	s.state = SessionActive

	s.logger.Info().
		Dur("min_interval", s.minInterval).
		Dur("target_interval", s.targetInterval).
		Msg("SamplingScheduler started")
	return nil
}

// Stop transitions Active -> Stopping -> Idle, unregistering the provider
// subscription before returning. Stopping an Idle scheduler is a no-op.
func (s *SamplingScheduler) Stop() error {
	s.mu.Lock()

	if s.state == SessionIdle {
		s.mu.Unlock()
		return nil
	}

	s.state = SessionStopping
	// Invalidate the session so a callback already in flight inside the
	// provider is dropped instead of forwarded.
	s.generation++
	handle := s.handle
	s.mu.Unlock()

	if err := s.provider.Unsubscribe(handle); err != nil {
		s.logger.Error().Err(err).Msg("Failed to unsubscribe from location provider")
	}

	s.mu.Lock()
	s.state = SessionIdle
	s.mu.Unlock()

	s.logger.Info().Msg("SamplingScheduler stopped")
	return nil
}

// forward converts one provider fix into a sample and hands it downstream.
// Invalid fixes and fixes from a superseded session are dropped silently.
// The lock is held through onSample so that once Stop has bumped the
// generation, no sample can still be on its way downstream; onSample must
// therefore never block (dispatch hands off to a task and returns).
func (s *SamplingScheduler) forward(generation uint64, fix location.Fix, onSample func(models.LocationSample)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation || s.state != SessionActive {
		return
	}

	if !fix.Valid {
		return
	}

	sample := models.LocationSample{
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AccuracyMeters: fix.Accuracy,
		AltitudeMeters: fix.Altitude,
		SpeedMps:       fix.Speed,
		CapturedAt:     time.Now().UnixMilli(),
	}
	if !sample.Valid() {
		return
	}

	onSample(sample)
}
