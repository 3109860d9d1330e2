package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
)

// ErrInvalidSlot is returned for slots other than 1 and 2.
var ErrInvalidSlot = errors.New("invalid slot number")

var catalogue = map[int]models.MedicationInfo{
	1: {
		Name:        "Paracetamol",
		Dosage:      "500mg",
		Schedule:    "As needed",
		Description: "Use for pain or fever. Do not exceed 8 tablets in 24 hours.",
		Icon:        "bi-capsule",
	},
	2: {
		Name:        "Antibiotic",
		Dosage:      "250mg",
		Schedule:    "Every 8 hours",
		Description: "Take with food. Complete the full course of treatment.",
		Icon:        "bi-pill",
	},
}

// MedicationName returns the medication loaded in slot, or "" for unknown slots.
func MedicationName(slot int) string {
	return catalogue[slot].Name
}

// Medication returns the catalogue entry for slot.
func Medication(slot int) (models.MedicationInfo, error) {
	info, ok := catalogue[slot]
	if !ok {
		return models.MedicationInfo{}, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	info.Success = true
	return info, nil
}

// LocalMedication is served by a hardware node while the brain is unreachable.
func LocalMedication(slot int) (models.MedicationInfo, error) {
	info, err := Medication(slot)
	if err != nil {
		return info, err
	}
	info.Description = shortDescription(slot)
	return info, nil
}

// FallbackMedication is served by a hardware node when the brain answered with an error.
func FallbackMedication(slot int) (models.MedicationInfo, error) {
	info, err := Medication(slot)
	if err != nil {
		return info, err
	}
	return models.MedicationInfo{
		Success:     true,
		Name:        info.Name + " (Srv Err)",
		Dosage:      info.Dosage,
		Description: "Err fetch.",
		Icon:        info.Icon,
	}, nil
}

func shortDescription(slot int) string {
	if slot == 1 {
		return "Use for pain or fever..."
	}
	return "Take with food..."
}

// Today returns the day's schedule relative to now: the antibiotic was taken at 08:00
// and paracetamol is due at the top of the next hour.
func Today(now time.Time) models.Schedule {
	return build(now, "")
}

// LocalToday is Today with entries marked as served locally.
func LocalToday(now time.Time) models.Schedule {
	return build(now, " (Local)")
}

func build(now time.Time, suffix string) models.Schedule {
	next := fmt.Sprintf("%02d:00", (now.Hour()+1)%24)

	upcoming := models.ScheduleEntry{Name: "Paracetamol" + suffix, Dosage: "500mg", Time: next, Slot: 1}
	return models.Schedule{
		Success:  true,
		Upcoming: upcoming,
		Today: []models.ScheduleEntry{
			{Name: "Antibiotic" + suffix, Dosage: "250mg", Time: "08:00", Slot: 2, Status: constants.StatusTaken},
			{Name: upcoming.Name, Dosage: upcoming.Dosage, Time: next, Slot: 1, Status: constants.StatusUpcoming},
		},
	}
}

// ErrInvalidTime is returned for schedule times not in HH:MM form.
var ErrInvalidTime = errors.New("invalid time format")

// Missed returns the upcoming entries whose time on now's date is more than grace in
// the past. Entries with malformed times are reported in errs and skipped.
func Missed(entries []models.ScheduleEntry, now time.Time, grace time.Duration) (missed []models.ScheduleEntry, errs []error) {
	for _, entry := range entries {
		if entry.Status != constants.StatusUpcoming || entry.Time == "" {
			continue
		}

		at, err := time.ParseInLocation("2006-01-02 15:04", now.Format("2006-01-02")+" "+entry.Time, now.Location())
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalidTime, entry.Name, entry.Time))
			continue
		}

		if now.Sub(at) > grace {
			missed = append(missed, entry)
		}
	}
	return missed, errs
}
