package location

// Fix represents one geolocation reading produced by a provider
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // estimated horizontal error in meters
	Altitude  float64 // meters above mean sea level
	Speed     float64 // meters per second over ground
	Valid     bool    // false until the receiver has a usable lock
}
