package models

// LocationSample is one position fix captured from the location provider,
// populated atomically from a single provider callback.
type LocationSample struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	AltitudeMeters float64
	SpeedMps       float64
	CapturedAt     int64 // epoch milliseconds
}

// Valid reports whether the sample carries usable coordinates.
func (s LocationSample) Valid() bool {
	if s.Latitude < -90 || s.Latitude > 90 {
		return false
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return false
	}
	// A (0,0) fix is what most receivers deliver before first lock.
	return s.Latitude != 0 || s.Longitude != 0
}

// LocationUpdate is the wire payload POSTed to the remote node. Key names
// are part of the wire contract and must not change.
type LocationUpdate struct {
	DeviceID  string  `json:"deviceId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds at send time
	Source    string  `json:"source"`
}
