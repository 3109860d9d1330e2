package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/brainclient"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/responder"
	"github.com/benmeehan/zima/internal/schedule"
	"github.com/rs/zerolog"
)

// MedicationMonitor periodically scans today's schedule and warns the caregiver about
// doses still marked upcoming well past their time. A missed dose is reported again on
// every scan until the schedule changes.
type MedicationMonitor struct {
	Interval    time.Duration
	GracePeriod time.Duration
	Brain       brainclient.BrainAPI
	Connection  responder.ConnectionState
	Notifier    responder.Notifier
	Logger      zerolog.Logger

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMedicationMonitor initializes a new MedicationMonitor.
func NewMedicationMonitor(interval, grace time.Duration, brain brainclient.BrainAPI,
	connection responder.ConnectionState, notifier responder.Notifier, logger zerolog.Logger) *MedicationMonitor {

	return &MedicationMonitor{
		Interval:    interval,
		GracePeriod: grace,
		Brain:       brain,
		Connection:  connection,
		Notifier:    notifier,
		Logger:      logger,
		now:         time.Now,
	}
}

// Start scans once immediately, then on every tick.
func (m *MedicationMonitor) Start() error {
	if m.ctx != nil {
		m.Logger.Warn().Msg("MedicationMonitor is already running")
		return errors.New("medication monitor is already running")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runScanLoop()
	}()

	m.Logger.Info().Dur("interval", m.Interval).Dur("grace_period", m.GracePeriod).Msg("MedicationMonitor started successfully")
	return nil
}

// Stop gracefully stops the monitor.
func (m *MedicationMonitor) Stop() error {
	if m.ctx == nil {
		m.Logger.Warn().Msg("MedicationMonitor is not running")
		return errors.New("medication monitor is not running")
	}

	m.cancel()
	m.wg.Wait()

	m.ctx = nil
	m.cancel = nil

	m.Logger.Info().Msg("MedicationMonitor stopped successfully")
	return nil
}

func (m *MedicationMonitor) runScanLoop() {
	m.Scan(m.ctx)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Scan(m.ctx)
		case <-m.ctx.Done():
			m.Logger.Info().Msg("MedicationMonitor stopping gracefully")
			return
		}
	}
}

// Scan checks the schedule once and returns the doses reported as missed.
func (m *MedicationMonitor) Scan(ctx context.Context) []models.ScheduleEntry {
	now := m.now()
	entries := m.todaysEntries(ctx, now)
	if len(entries) == 0 {
		m.Logger.Debug().Msg("No medications in schedule to check for missed doses")
		return nil
	}

	missed, errs := schedule.Missed(entries, now, m.GracePeriod)
	for _, err := range errs {
		m.Logger.Error().Err(err).Msg("Skipping schedule entry")
	}

	for _, entry := range missed {
		m.Logger.Warn().Str("medication", entry.Name).Str("time", entry.Time).Msg("Missed medication detected")
		m.Notifier.Notify(constants.PriorityWarning,
			fmt.Sprintf("MISSED MEDICATION: %s scheduled for %s hasn't been taken.", entry.Name, entry.Time))
	}
	return missed
}

// todaysEntries prefers the brain's schedule. A failed fetch while online yields nothing,
// the static schedule is only used offline.
func (m *MedicationMonitor) todaysEntries(ctx context.Context, now time.Time) []models.ScheduleEntry {
	if !m.Connection.Connected() {
		return schedule.Today(now).Today
	}

	s, err := m.Brain.Schedule(ctx)
	if err != nil {
		m.Logger.Warn().Err(err).Msg("Failed to get schedule from server for missed medication check")
		return nil
	}
	return s.Today
}
