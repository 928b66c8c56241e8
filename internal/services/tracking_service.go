package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/metrics"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/status"
)

// TrackingService owns one tracking session: it re-reads the device
// identity at start, runs the sampling scheduler, fans samples out to
// per-sample delivery tasks and serializes all status updates through a
// single consumer goroutine so the sink only ever has one writer.
type TrackingService struct {
	// Dependencies
	scheduler     *SamplingScheduler
	reporter      *Reporter
	identityStore identity.Store
	sink          status.Sink
	workers       int
	logger        zerolog.Logger

	// Internal state management
	mu        sync.Mutex
	running   bool
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
	pool      *utils.WorkerPool
	inflight  cmap.ConcurrentMap[string, context.CancelFunc]
	statusCh  chan string
	taskWg    sync.WaitGroup
	loopWg    sync.WaitGroup
}

// NewTrackingService creates a new TrackingService instance.
func NewTrackingService(scheduler *SamplingScheduler, reporter *Reporter, identityStore identity.Store,
	sink status.Sink, workers int, logger zerolog.Logger) *TrackingService {
	return &TrackingService{
		scheduler:     scheduler,
		reporter:      reporter,
		identityStore: identityStore,
		sink:          sink,
		workers:       workers,
		logger:        logger,
	}
}

// Start loads the identity, starts the status loop and the scheduler.
// A permission denial surfaces one skipped status and leaves the service
// stopped; the caller must invoke Start again once access is granted.
func (t *TrackingService) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.logger.Warn().Msg("TrackingService is already running")
		return errors.New("tracking service is already running")
	}

	// Re-read per session so configuration edits apply on restart.
	ident, err := t.identityStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load device identity: %w", err)
	}

	t.sessionID = uuid.New().String()
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.statusCh = make(chan string, 16)
	t.inflight = cmap.New[context.CancelFunc]()
	t.pool = utils.NewWorkerPool(t.workers, t.workers*2)

	t.loopWg.Add(1)
	go t.statusLoop()

	ctx := t.ctx
	if err := t.scheduler.Start(func(sample models.LocationSample) {
		t.dispatch(ctx, sample, ident)
	}); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			t.statusCh <- models.SkippedDelivery(constants.SkipReasonPermissionDenied).StatusText()
		}
		t.teardownLocked()
		return err
	}

	t.statusCh <- "Tracking location..."
	t.running = true

	t.logger.Info().
		Str("session_id", t.sessionID).
		Str("device_id", ident.DeviceID).
		Str("node_url", ident.NodeURL).
		Msg("TrackingService started")
	return nil
}

// Stop ends the session: no sample is forwarded after it returns and
// in-flight delivery tasks are cancelled, their outcomes discarded.
// Stopping a stopped service is a no-op.
func (t *TrackingService) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	if err := t.scheduler.Stop(); err != nil {
		t.logger.Error().Err(err).Msg("Failed to stop sampling scheduler")
	}

	t.statusCh <- "Tracking stopped"
	t.teardownLocked()
	t.running = false

	t.logger.Info().Str("session_id", t.sessionID).Msg("TrackingService stopped")
	return nil
}

// teardownLocked cancels the session context and all in-flight delivery
// tasks, then drains the workers and the status loop. Caller holds t.mu.
func (t *TrackingService) teardownLocked() {
	t.cancel()
	for entry := range t.inflight.IterBuffered() {
		entry.Val()
	}
	t.pool.Shutdown()
	t.taskWg.Wait()
	close(t.statusCh)
	t.loopWg.Wait()
}

// dispatch runs one delivery task per sample. Tasks are independent; a
// slow or hung upload never delays the next sample, so a full worker queue
// falls back to a dedicated goroutine instead of blocking the provider
// callback.
func (t *TrackingService) dispatch(ctx context.Context, sample models.LocationSample, ident identity.Identity) {
	metrics.SamplesReceivedTotal.Inc()

	taskID := uuid.New().String()
	taskCtx, taskCancel := context.WithCancel(ctx)
	t.inflight.Set(taskID, taskCancel)

	task := func() {
		defer t.inflight.Remove(taskID)
		defer taskCancel()

		started := time.Now()
		outcome := t.reporter.Report(taskCtx, sample, ident)
		metrics.UploadDuration.Observe(time.Since(started).Seconds())
		metrics.UploadsTotal.WithLabelValues(outcome.Kind.String()).Inc()

		// A session that ended while the upload ran no longer owns the
		// status surface; the outcome is dropped.
		if taskCtx.Err() != nil {
			return
		}
		t.publish(ctx, outcome.StatusText())
	}

	if !t.pool.TrySubmit(task) {
		t.taskWg.Add(1)
		go func() {
			defer t.taskWg.Done()
			task()
		}()
	}
}

// publish hands a status text to the single-writer loop, giving up when
// the session ends first.
func (t *TrackingService) publish(ctx context.Context, text string) {
	select {
	case <-ctx.Done():
	case t.statusCh <- text:
	}
}

// statusLoop is the only writer to the sink.
func (t *TrackingService) statusLoop() {
	defer t.loopWg.Done()
	for text := range t.statusCh {
		t.sink.Publish(text)
	}
}
