package location

import "time"

// Handle identifies one active subscription with a provider.
type Handle uint64

// Provider interface defines the methods for push-based location providers.
//
// A provider delivers fixes to the callback on its own goroutine. It must
// never deliver two fixes to the same subscriber closer together than
// minInterval, and should aim for one fix per targetInterval; anything in
// between is the provider's power-management choice.
type Provider interface {
	Subscribe(minInterval, targetInterval time.Duration, callback func(Fix)) (Handle, error)
	Unsubscribe(handle Handle) error
	Close() error
}
