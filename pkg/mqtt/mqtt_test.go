package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPublish_Acknowledged(t *testing.T) {
	// Setup
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)
	payload := []byte(`{"priority":"warning"}`)
	client.On("Publish", "zima/alerts", byte(1), false, payload).Return(token)
	token.On("WaitTimeout", time.Second).Return(true)
	token.On("Error").Return(nil)
	service := NewMqttServiceWithClient(client, time.Second)

	// Execute
	err := service.Publish("zima/alerts", 1, payload)

	// Assert
	assert.NoError(t, err)
	client.AssertExpectations(t)
	token.AssertExpectations(t)
}

func TestPublish_Timeout(t *testing.T) {
	// Setup
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)
	client.On("Publish", "zima/alerts", byte(0), false, mock.Anything).Return(token)
	token.On("WaitTimeout", time.Second).Return(false)
	service := NewMqttServiceWithClient(client, time.Second)

	// Execute
	err := service.Publish("zima/alerts", 0, []byte("x"))

	// Assert
	assert.ErrorIs(t, err, ErrPublishTimeout)
}

func TestPublish_BrokerError(t *testing.T) {
	// Setup
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)
	client.On("Publish", "zima/alerts", byte(1), false, mock.Anything).Return(token)
	token.On("WaitTimeout", time.Second).Return(true)
	token.On("Error").Return(errors.New("not authorized"))
	service := NewMqttServiceWithClient(client, time.Second)

	// Execute
	err := service.Publish("zima/alerts", 1, []byte("x"))

	// Assert
	assert.EqualError(t, err, "not authorized")
}

func TestPublish_NotInitialized(t *testing.T) {
	// Execute
	err := NewMqttService(0).Publish("zima/alerts", 1, []byte("x"))

	// Assert
	assert.Error(t, err)
}

func TestDisconnect(t *testing.T) {
	// Setup
	client := new(mocks.MockMQTTClient)
	client.On("Disconnect", uint(250)).Return()
	service := NewMqttServiceWithClient(client, time.Second)

	// Execute
	service.Disconnect(250)
	NewMqttService(0).Disconnect(250)

	// Assert
	client.AssertExpectations(t)
}
