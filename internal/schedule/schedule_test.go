package schedule

import (
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday_RelativeToNow(t *testing.T) {
	now := time.Date(2025, 5, 4, 23, 40, 0, 0, time.UTC)

	s := Today(now)
	assert.Equal(t, "00:00", s.Upcoming.Time)
	require.Len(t, s.Today, 2)
	assert.Equal(t, "Antibiotic", s.Today[0].Name)
	assert.Equal(t, constants.StatusTaken, s.Today[0].Status)
	assert.Equal(t, constants.StatusUpcoming, s.Today[1].Status)

	local := LocalToday(now)
	assert.Equal(t, "Paracetamol (Local)", local.Upcoming.Name)
}

func TestMedication(t *testing.T) {
	info, err := Medication(2)
	require.NoError(t, err)
	assert.Equal(t, "Antibiotic", info.Name)
	assert.Equal(t, "bi-pill", info.Icon)

	_, err = Medication(3)
	assert.ErrorIs(t, err, ErrInvalidSlot)

	fallback, err := FallbackMedication(1)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol (Srv Err)", fallback.Name)

	local, err := LocalMedication(1)
	require.NoError(t, err)
	assert.Equal(t, "Use for pain or fever...", local.Description)
}

func TestMissed(t *testing.T) {
	now := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)
	entries := []models.ScheduleEntry{
		{Name: "Antibiotic", Time: "08:00", Status: constants.StatusTaken},
		{Name: "Vitamin D", Time: "11:29", Status: constants.StatusUpcoming},
		{Name: "Iron", Time: "11:31", Status: constants.StatusUpcoming},
		{Name: "Paracetamol", Time: "13:00", Status: constants.StatusUpcoming},
		{Name: "Broken", Time: "noon", Status: constants.StatusUpcoming},
	}

	missed, errs := Missed(entries, now, 30*time.Minute)

	require.Len(t, missed, 1)
	assert.Equal(t, "Vitamin D", missed[0].Name)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidTime)
}
