package status

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Publisher is the slice of the MQTT client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes the status text to a retained MQTT topic, so a
// subscriber connecting later still sees the most recent state.
type MQTTSink struct {
	topic  string
	qos    int
	client Publisher
	logger zerolog.Logger
}

// NewMQTTSink creates an MQTTSink publishing to the given topic.
func NewMQTTSink(topic string, qos int, client Publisher, logger zerolog.Logger) *MQTTSink {
	return &MQTTSink{
		topic:  topic,
		qos:    qos,
		client: client,
		logger: logger,
	}
}

// Publish sends the status text as a retained message. Broker errors are
// logged and swallowed; status surfacing never fails a delivery.
func (m *MQTTSink) Publish(text string) {
	token := m.client.Publish(m.topic, byte(m.qos), true, []byte(text))
	token.Wait()

	if err := token.Error(); err != nil {
		m.logger.Error().
			Err(err).
			Str("topic", m.topic).
			Msg("Failed to publish status message to MQTT")
	}
}
