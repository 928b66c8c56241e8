package permissions

import "os"

// Checker reports whether the agent is allowed to read device location.
// The scheduler consults it once per session start; a denial halts the
// session until the caller starts it again.
type Checker interface {
	Granted() bool
}

// Static is a fixed grant decision, used for providers that need no local
// device access and in tests.
type Static bool

// Granted returns the fixed decision.
func (s Static) Granted() bool {
	return bool(s)
}

// DeviceAccess grants when the GPS device node can be opened for reading.
type DeviceAccess struct {
	Path string
}

// Granted probes the device node.
func (d DeviceAccess) Granted() bool {
	f, err := os.Open(d.Path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
