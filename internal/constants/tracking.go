package constants

const (
	// PayloadSource tags every upload so the receiving node can tell
	// companion-app data apart from other feeds.
	PayloadSource = "android-companion"
	// LocationUpdatePath is appended to the configured node base URL.
	LocationUpdatePath = "/api/location/update"
)

// Skip reasons for deliveries that never reach the network
const (
	// SkipReasonNoDeviceID indicates the identity store holds no device ID
	SkipReasonNoDeviceID = "no_device_id"
	// SkipReasonPermissionDenied indicates the location capability is not accessible
	SkipReasonPermissionDenied = "permission_denied"
)
