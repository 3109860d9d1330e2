package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/chatlog"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/rs/zerolog"
)

// Registrar registers this node with the brain node.
type Registrar interface {
	Register(ctx context.Context) error
}

// ConnectionMonitor probes the brain node's heartbeat and owns the node's online flag.
// Transitions are announced in the chat log, and coming back online re-registers the node.
type ConnectionMonitor struct {
	Interval  time.Duration
	Brain     brainclient.BrainAPI
	Registrar Registrar
	Chat      *chatlog.Log
	Logger    zerolog.Logger

	connected atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConnectionMonitor initializes a new ConnectionMonitor. The node starts offline.
func NewConnectionMonitor(interval time.Duration, brain brainclient.BrainAPI, registrar Registrar,
	chat *chatlog.Log, logger zerolog.Logger) *ConnectionMonitor {

	return &ConnectionMonitor{
		Interval:  interval,
		Brain:     brain,
		Registrar: registrar,
		Chat:      chat,
		Logger:    logger,
	}
}

// Connected reports the result of the last probe.
func (c *ConnectionMonitor) Connected() bool {
	return c.connected.Load()
}

// Start runs one probe and registration synchronously, then probes in the background.
func (c *ConnectionMonitor) Start() error {
	if c.ctx != nil {
		c.Logger.Warn().Msg("ConnectionMonitor is already running")
		return errors.New("connection monitor is already running")
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	connected := c.probe(c.ctx)
	c.connected.Store(connected)
	metrics.SetBrainConnected(connected)
	if connected {
		c.register(c.ctx)
	} else {
		c.Logger.Warn().Str("server", c.Brain.URL()).Msg("Server not reachable at startup, operating in offline mode")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runConnectionLoop()
	}()

	c.Logger.Info().Dur("interval", c.Interval).Bool("connected", connected).Msg("ConnectionMonitor started successfully")
	return nil
}

// Stop gracefully stops the monitor.
func (c *ConnectionMonitor) Stop() error {
	if c.ctx == nil {
		c.Logger.Warn().Msg("ConnectionMonitor is not running")
		return errors.New("connection monitor is not running")
	}

	c.cancel()
	c.wg.Wait()

	c.ctx = nil
	c.cancel = nil

	c.Logger.Info().Msg("ConnectionMonitor stopped successfully")
	return nil
}

func (c *ConnectionMonitor) runConnectionLoop() {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Check(c.ctx)
		case <-c.ctx.Done():
			c.Logger.Info().Msg("ConnectionMonitor stopping gracefully")
			return
		}
	}
}

// Check probes once and handles a state transition. It returns the new state.
func (c *ConnectionMonitor) Check(ctx context.Context) bool {
	connected := c.probe(ctx)
	previous := c.connected.Swap(connected)
	metrics.SetBrainConnected(connected)
	if previous == connected {
		return connected
	}

	c.Logger.Info().Bool("connected", connected).Msg("Server connection status changed")
	if connected {
		c.Chat.System(constants.SenderSystem, "LLM server connection restored. Operating in online mode.")
		c.register(ctx)
	} else {
		c.Chat.System(constants.SenderSystem, "LLM server connection lost. Operating in offline mode.")
	}
	return connected
}

func (c *ConnectionMonitor) probe(ctx context.Context) bool {
	hb, err := c.Brain.Heartbeat(ctx)
	if err != nil {
		c.Logger.Debug().Err(err).Msg("Heartbeat probe failed")
		return false
	}
	return hb.Status == constants.StatusOK
}

func (c *ConnectionMonitor) register(ctx context.Context) {
	if c.Registrar == nil {
		return
	}
	if err := c.Registrar.Register(ctx); err != nil {
		c.Logger.Error().Err(err).Msg("Failed to register with server")
	}
}
