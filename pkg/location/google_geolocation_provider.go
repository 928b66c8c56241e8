package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

// geolocateTimeout bounds one Geolocation API round trip.
const geolocateTimeout = 10 * time.Second

// GoogleGeolocationProvider resolves the device position through the Google
// Maps Geolocation API from nearby WiFi access points and cell towers. The
// API is pull-only, so each subscription polls at its target interval and
// pushes the result; the minimum interval is satisfied by construction since
// the target interval can never undercut it.
type GoogleGeolocationProvider struct {
	client *maps.Client
	logger zerolog.Logger

	mu     sync.Mutex
	nextID Handle
	subs   map[Handle]context.CancelFunc
	closed bool
}

// NewGoogleGeolocationProvider creates a provider backed by the Geolocation API.
func NewGoogleGeolocationProvider(apiKey string, logger zerolog.Logger) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client: c,
		logger: logger,
		subs:   make(map[Handle]context.CancelFunc),
	}, nil
}

// Subscribe starts a poll loop delivering one fix per target interval.
func (g *GoogleGeolocationProvider) Subscribe(minInterval, targetInterval time.Duration, callback func(Fix)) (Handle, error) {
	if targetInterval < minInterval {
		targetInterval = minInterval
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, errors.New("google geolocation provider is closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.nextID++
	handle := g.nextID
	g.subs[handle] = cancel

	go g.pollLoop(ctx, targetInterval, callback)
	return handle, nil
}

// Unsubscribe stops the subscription's poll loop.
func (g *GoogleGeolocationProvider) Unsubscribe(handle Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cancel, ok := g.subs[handle]
	if !ok {
		return errors.New("unknown subscription handle")
	}
	cancel()
	delete(g.subs, handle)
	return nil
}

// Close stops all poll loops.
func (g *GoogleGeolocationProvider) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for handle, cancel := range g.subs {
		cancel()
		delete(g.subs, handle)
	}
	g.closed = true
	return nil
}

func (g *GoogleGeolocationProvider) pollLoop(ctx context.Context, interval time.Duration, callback func(Fix)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fix, err := g.geolocate(ctx)
			if err != nil {
				g.logger.Error().Err(err).Msg("Geolocation lookup failed")
				continue
			}
			callback(fix)
		case <-ctx.Done():
			return
		}
	}
}

// geolocate performs one Geolocation API round trip.
func (g *GoogleGeolocationProvider) geolocate(ctx context.Context) (Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, geolocateTimeout)
	defer cancel()

	req := &maps.GeolocationRequest{ConsiderIP: true}

	// Radio environment data is best effort; IP geolocation still works
	// without it, just with a worse accuracy radius.
	if wifiAPs, err := scanWiFiAccessPoints(ctx); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}
	if cellTowers, err := scanCellTowers(ctx, 0); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Fix{}, err
	}

	return Fix{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Valid:     true,
	}, nil
}
