package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/location-agent/pkg/location"
)

// MockLocationProvider is a mock implementation of the location.Provider interface
type MockLocationProvider struct {
	mock.Mock
}

func (m *MockLocationProvider) Subscribe(minInterval, targetInterval time.Duration, callback func(location.Fix)) (location.Handle, error) {
	args := m.Called(minInterval, targetInterval, callback)
	return args.Get(0).(location.Handle), args.Error(1)
}

func (m *MockLocationProvider) Unsubscribe(handle location.Handle) error {
	args := m.Called(handle)
	return args.Error(0)
}

func (m *MockLocationProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
