package location

import (
	"bufio"
	"errors"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

// knots reported by RMC sentences, meters per second on the wire
const knotsToMps = 0.514444

// DeviceSensorProvider streams fixes from a GPS receiver connected via
// serial port. The receiver pushes NMEA sentences at its own rate; the
// provider coalesces them into fixes and honors each subscriber's minimum
// interval, so a 1 Hz receiver does not flood a subscriber asking for one
// fix per minute.
type DeviceSensorProvider struct {
	port     string
	baudRate int
	logger   zerolog.Logger

	mu      sync.Mutex
	nextID  Handle
	subs    map[Handle]*sensorSubscription
	serial  *serial.Port
	reading bool
	closed  bool

	// parse state carried across sentences of one receiver cycle
	lastSpeedMps float64
}

type sensorSubscription struct {
	minInterval time.Duration
	callback    func(Fix)
	lastSent    time.Time
}

// NewDeviceSensorProvider creates a provider for the GPS receiver at the
// given serial port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int, logger zerolog.Logger) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		logger:   logger,
		subs:     make(map[Handle]*sensorSubscription),
	}
}

// Subscribe registers a callback for fixes. The serial port is opened on the
// first subscription and closed when the last subscriber leaves.
func (d *DeviceSensorProvider) Subscribe(minInterval, _ time.Duration, callback func(Fix)) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, errors.New("device sensor provider is closed")
	}

	if !d.reading {
		s, err := serial.OpenPort(&serial.Config{Name: d.port, Baud: d.baudRate})
		if err != nil {
			return 0, err
		}
		d.serial = s
		d.reading = true
		go d.readLoop(s)
	}

	d.nextID++
	handle := d.nextID
	d.subs[handle] = &sensorSubscription{
		minInterval: minInterval,
		callback:    callback,
	}

	d.logger.Debug().
		Str("port", d.port).
		Dur("min_interval", minInterval).
		Msg("Subscribed to GPS sensor fixes")
	return handle, nil
}

// Unsubscribe removes a subscription. No callback runs after it returns
// for a handle registered by the same goroutine's Subscribe call.
func (d *DeviceSensorProvider) Unsubscribe(handle Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.subs[handle]; !ok {
		return errors.New("unknown subscription handle")
	}
	delete(d.subs, handle)

	if len(d.subs) == 0 {
		d.stopReadingLocked()
	}
	return nil
}

// Close releases the serial port and drops all subscriptions.
func (d *DeviceSensorProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.subs = make(map[Handle]*sensorSubscription)
	d.stopReadingLocked()
	return nil
}

func (d *DeviceSensorProvider) stopReadingLocked() {
	if d.serial != nil {
		if err := d.serial.Close(); err != nil {
			d.logger.Warn().Err(err).Str("port", d.port).Msg("Failed to close serial port")
		}
		d.serial = nil
	}
	d.reading = false
}

// readLoop scans NMEA sentences until the port is closed.
func (d *DeviceSensorProvider) readLoop(s *serial.Port) {
	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		fix, ok := d.consume(scanner.Text())
		if !ok {
			continue
		}
		d.dispatch(fix)
	}

	if err := scanner.Err(); err != nil {
		d.logger.Error().Err(err).Str("port", d.port).Msg("GPS sensor read loop ended")
	}
}

// consume parses one NMEA sentence and returns a fix when the sentence
// completes one. RMC carries speed over ground, GGA carries altitude and
// HDOP; a fix is emitted per GGA using the most recent RMC speed.
func (d *DeviceSensorProvider) consume(line string) (Fix, bool) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		// Receivers emit proprietary sentences the parser does not know.
		return Fix{}, false
	}

	switch s := sentence.(type) {
	case nmea.RMC:
		d.lastSpeedMps = s.Speed * knotsToMps
		return Fix{}, false
	case nmea.GGA:
		return Fix{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Accuracy:  s.HDOP, // HDOP as a proxy for accuracy
			Altitude:  s.Altitude,
			Speed:     d.lastSpeedMps,
			Valid:     s.FixQuality != "0",
		}, true
	default:
		return Fix{}, false
	}
}

func (d *DeviceSensorProvider) dispatch(fix Fix) {
	now := time.Now()

	d.mu.Lock()
	var callbacks []func(Fix)
	for _, sub := range d.subs {
		if now.Sub(sub.lastSent) < sub.minInterval {
			continue
		}
		sub.lastSent = now
		callbacks = append(callbacks, sub.callback)
	}
	d.mu.Unlock()

	for _, cb := range callbacks {
		cb(fix)
	}
}
