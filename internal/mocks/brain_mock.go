package mocks

import (
	"context"

	"github.com/benmeehan/zima/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockBrainAPI is a mock implementation of the BrainAPI interface
type MockBrainAPI struct {
	mock.Mock
}

func (m *MockBrainAPI) Heartbeat(ctx context.Context) (models.Heartbeat, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Heartbeat), args.Error(1)
}

func (m *MockBrainAPI) Register(ctx context.Context, payload models.RegistrationPayload) (models.RegistrationResponse, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(models.RegistrationResponse), args.Error(1)
}

func (m *MockBrainAPI) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBrainAPI) Schedule(ctx context.Context) (models.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Schedule), args.Error(1)
}

func (m *MockBrainAPI) MedicationInfo(ctx context.Context, slot int) (models.MedicationInfo, error) {
	args := m.Called(ctx, slot)
	return args.Get(0).(models.MedicationInfo), args.Error(1)
}

func (m *MockBrainAPI) Users(ctx context.Context) ([]models.UserProfile, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.UserProfile)
	return users, args.Error(1)
}

func (m *MockBrainAPI) SelectUser(ctx context.Context, id string) (models.UserProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.UserProfile), args.Error(1)
}

func (m *MockBrainAPI) AddUser(ctx context.Context, profile models.UserProfile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *MockBrainAPI) URL() string {
	args := m.Called()
	return args.String(0)
}
