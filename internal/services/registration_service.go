package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/pkg/identity"
)

// ErrRegistrationStopped is returned when the context ends between attempts.
var ErrRegistrationStopped = errors.New("registration stopped")

// RegistrationService announces this hardware node to the brain node.
type RegistrationService struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	brain    brainclient.BrainAPI
	nodeInfo identity.NodeInfoInterface
	mode     func() string
	localIP  func() string
	logger   zerolog.Logger
}

// NewRegistrationService initializes and returns a new RegistrationService instance.
// mode reports the current hardware mode; localIP the address the node advertises.
func NewRegistrationService(
	maxRetries int,
	baseDelay time.Duration,
	maxDelay time.Duration,
	brain brainclient.BrainAPI,
	nodeInfo identity.NodeInfoInterface,
	mode func() string,
	localIP func() string,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		brain:      brain,
		nodeInfo:   nodeInfo,
		mode:       mode,
		localIP:    localIP,
		logger:     logger,
	}
}

// Payload builds the registration body from the node's current state.
func (rs *RegistrationService) Payload() models.RegistrationPayload {
	return models.RegistrationPayload{
		ClientType:    constants.ClientTypeRaspberryPi,
		ClientIP:      rs.localIP(),
		ClientVersion: constants.ClientVersion,
		HardwareMode:  rs.mode(),
		InstanceID:    rs.nodeInfo.GetInstanceID(),
	}
}

// Register posts the payload, retrying with jittered exponential backoff.
func (rs *RegistrationService) Register(ctx context.Context) error {
	payload := rs.Payload()

	var err error
	for attempt := 0; attempt <= rs.maxRetries; attempt++ {
		var resp models.RegistrationResponse
		resp, err = rs.brain.Register(ctx, payload)
		if err == nil {
			rs.logger.Info().
				Str("client_ip", payload.ClientIP).
				Str("server_time", resp.ServerTime).
				Int("attempt", attempt+1).
				Msg("Successfully registered with server")
			return nil
		}

		rs.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Failed to register with server")
		if attempt == rs.maxRetries {
			break
		}

		select {
		case <-time.After(rs.backoff(attempt)):
		case <-ctx.Done():
			return ErrRegistrationStopped
		}
	}

	return fmt.Errorf("registration failed after %d attempts: %w", rs.maxRetries+1, err)
}

func (rs *RegistrationService) backoff(attempt int) time.Duration {
	delay := rs.baseDelay * time.Duration(1<<uint(attempt))
	if delay > rs.maxDelay {
		delay = rs.maxDelay
	}
	// 75-100% of the capped delay
	return time.Duration(float64(delay) * (0.75 + rand.Float64()*0.25))
}
