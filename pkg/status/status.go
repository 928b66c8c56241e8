package status

import "github.com/rs/zerolog"

// Sink receives the latest human-readable tracking status. Each publish
// replaces the previous text; implementations keep no history.
type Sink interface {
	Publish(text string)
}

// LogSink surfaces status text through the structured log.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink writing to the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish logs the status text.
func (l *LogSink) Publish(text string) {
	l.logger.Info().Str("status", text).Msg("Tracking status")
}

// Multi fans one publish out to several sinks in order.
type Multi []Sink

// Publish forwards the text to every sink.
func (m Multi) Publish(text string) {
	for _, sink := range m {
		sink.Publish(text)
	}
}
