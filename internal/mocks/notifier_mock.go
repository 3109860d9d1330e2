package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(priority, message string) bool {
	args := m.Called(priority, message)
	return args.Bool(0)
}

// MockConnection reports a fixed connection state that tests can flip.
type MockConnection struct {
	mu        sync.Mutex
	connected bool
}

func NewMockConnection(connected bool) *MockConnection {
	return &MockConnection{connected: connected}
}

func (m *MockConnection) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockConnection) Set(connected bool) {
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()
}
