package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockHardware is a mock implementation of the HardwareInterface
type MockHardware struct {
	mock.Mock
}

func (m *MockHardware) Mode() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockHardware) Rotate(servo int, direction string) (int, error) {
	args := m.Called(servo, direction)
	return args.Int(0), args.Error(1)
}

func (m *MockHardware) Position(servo int) (int, error) {
	args := m.Called(servo)
	return args.Int(0), args.Error(1)
}

func (m *MockHardware) Dispense(servo int) error {
	args := m.Called(servo)
	return args.Error(0)
}

func (m *MockHardware) MeasureDistance() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}
