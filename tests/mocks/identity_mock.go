package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/location-agent/pkg/identity"
)

// MockIdentityStore is a mock implementation of the identity.Store interface
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Load() (identity.Identity, error) {
	args := m.Called()
	return args.Get(0).(identity.Identity), args.Error(1)
}

func (m *MockIdentityStore) Save(ident identity.Identity) error {
	args := m.Called(ident)
	return args.Error(0)
}
