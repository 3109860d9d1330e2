package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTClient defines the subset of the paho client used by this project.
type MQTTClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MqttService provides methods for MQTT operations.
type MqttService struct {
	client  MQTTClient
	timeout time.Duration
}

// NewMqttService creates a new MqttService instance.
func NewMqttService(timeout time.Duration) *MqttService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MqttService{timeout: timeout}
}

// NewMqttServiceWithClient wraps an existing client, mainly for tests.
func NewMqttServiceWithClient(client MQTTClient, timeout time.Duration) *MqttService {
	s := NewMqttService(timeout)
	s.client = client
	return s
}

// Initialize sets up the MQTT client and starts the connection. TLS is enabled
// only when caCertPath is set.
func (s *MqttService) Initialize(broker, clientID, caCertPath string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	if caCertPath != "" {
		caCert, err := os.ReadFile(caCertPath)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return fmt.Errorf("failed to append CA certificate")
		}
		opts.SetTLSConfig(&tls.Config{RootCAs: caCertPool})
	}

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("connect to %s: %w", broker, ErrPublishTimeout)
	}
	return token.Error()
}

// Publish sends payload to topic and waits for the broker acknowledgement.
func (s *MqttService) Publish(topic string, qos byte, payload []byte) error {
	if s.client == nil {
		return errors.New("mqtt client not initialized")
	}

	token := s.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(s.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Disconnect gracefully disconnects the MQTT client.
func (s *MqttService) Disconnect(quiesce uint) {
	if s.client != nil {
		s.client.Disconnect(quiesce)
	}
}
