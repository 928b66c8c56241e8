package models

import "fmt"

// OutcomeKind classifies the result of one upload attempt.
type OutcomeKind int

const (
	// OutcomeSuccess indicates the node accepted the upload
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRejected indicates the node answered with a non-2xx status
	OutcomeRejected
	// OutcomeTransportError indicates the request never completed
	OutcomeTransportError
	// OutcomeSkipped indicates no network call was attempted
	OutcomeSkipped
)

// String returns the metrics label for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "skipped"
	}
}

// DeliveryOutcome is the classified result of a single delivery attempt.
// Exactly one is produced per sample; none are retained.
type DeliveryOutcome struct {
	Kind       OutcomeKind
	Sample     LocationSample
	StatusCode int    // set when Kind is OutcomeRejected
	Message    string // set when Kind is OutcomeTransportError
	Reason     string // set when Kind is OutcomeSkipped
}

// Delivered builds the outcome for an accepted upload.
func Delivered(sample LocationSample) DeliveryOutcome {
	return DeliveryOutcome{Kind: OutcomeSuccess, Sample: sample}
}

// RejectedByServer builds the outcome for a non-2xx response.
func RejectedByServer(sample LocationSample, statusCode int) DeliveryOutcome {
	return DeliveryOutcome{Kind: OutcomeRejected, Sample: sample, StatusCode: statusCode}
}

// TransportFailure builds the outcome for a request that never completed.
func TransportFailure(sample LocationSample, message string) DeliveryOutcome {
	return DeliveryOutcome{Kind: OutcomeTransportError, Sample: sample, Message: message}
}

// SkippedDelivery builds the outcome for a sample dropped before any network call.
func SkippedDelivery(reason string) DeliveryOutcome {
	return DeliveryOutcome{Kind: OutcomeSkipped, Reason: reason}
}

// StatusText renders the outcome for the status surface. Coordinates use
// fixed 6-decimal precision.
func (o DeliveryOutcome) StatusText() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Location: %.6f, %.6f", o.Sample.Latitude, o.Sample.Longitude)
	case OutcomeRejected:
		return fmt.Sprintf("Upload failed: %d", o.StatusCode)
	case OutcomeTransportError:
		return fmt.Sprintf("Network error: %s", o.Message)
	default:
		return fmt.Sprintf("Upload skipped: %s", o.Reason)
	}
}
