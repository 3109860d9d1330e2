package mocks

import (
	"context"

	"github.com/benmeehan/zima/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockWeather is a mock implementation of the weather Fetcher
type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) Current(ctx context.Context, city, units string) (models.WeatherReport, error) {
	args := m.Called(ctx, city, units)
	return args.Get(0).(models.WeatherReport), args.Error(1)
}
