package mocks

import (
	"github.com/benmeehan/zima/pkg/identity"
	"github.com/stretchr/testify/mock"
)

// MockNodeInfo is a mock implementation of the NodeInfoInterface
type MockNodeInfo struct {
	mock.Mock
}

func (m *MockNodeInfo) LoadNodeInfo() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockNodeInfo) GetInstanceID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockNodeInfo) GetIdentity() *identity.Identity {
	args := m.Called()
	return args.Get(0).(*identity.Identity)
}
