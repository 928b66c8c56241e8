package mocks

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MockMQTTPublisher is a mock implementation of the status.Publisher interface
type MockMQTTPublisher struct {
	mock.Mock
}

func (m *MockMQTTPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}
