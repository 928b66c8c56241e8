package mocks

import "github.com/stretchr/testify/mock"

// MockPermissionChecker is a mock implementation of the permissions.Checker interface
type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) Granted() bool {
	args := m.Called()
	return args.Bool(0)
}
