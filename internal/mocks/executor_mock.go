package mocks

import (
	"context"

	"github.com/benmeehan/zima/internal/assistant"
	"github.com/benmeehan/zima/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock implementation of the brain's node executor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, function string, args map[string]any, target string) (map[string]any, error) {
	ret := m.Called(ctx, function, args, target)
	result, _ := ret.Get(0).(map[string]any)
	return result, ret.Error(1)
}

func (m *MockExecutor) ServoPosition(ctx context.Context, target string, servo int) (map[string]any, error) {
	ret := m.Called(ctx, target, servo)
	result, _ := ret.Get(0).(map[string]any)
	return result, ret.Error(1)
}

func (m *MockExecutor) Alert(ctx context.Context, target string, event models.EmergencyEvent) error {
	ret := m.Called(ctx, target, event)
	return ret.Error(0)
}

// MockChatter is a mock implementation of the brain's chat assistant
type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, caller, userID, message string) assistant.Reply {
	ret := m.Called(ctx, caller, userID, message)
	return ret.Get(0).(assistant.Reply)
}

func (m *MockChatter) Respond(ctx context.Context, caller, prompt string) assistant.Reply {
	ret := m.Called(ctx, caller, prompt)
	return ret.Get(0).(assistant.Reply)
}

// MockGenerator is a mock implementation of llm.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	ret := m.Called(ctx, prompt, system)
	return ret.String(0), ret.Error(1)
}

func (m *MockGenerator) Status(ctx context.Context) string {
	ret := m.Called(ctx)
	return ret.String(0)
}

func (m *MockGenerator) Model() string {
	ret := m.Called()
	return ret.String(0)
}
