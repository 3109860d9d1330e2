package models

// ScheduleEntry is one dose in today's schedule.
type ScheduleEntry struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Time   string `json:"time"` // HH:MM
	Slot   int    `json:"slot"`
	Status string `json:"status,omitempty"`
}

// Schedule is the reply of /get_schedule on both nodes.
type Schedule struct {
	Success  bool            `json:"success"`
	Upcoming ScheduleEntry   `json:"upcoming"`
	Today    []ScheduleEntry `json:"today"`
}

// MedicationInfo describes the medication loaded in a slot.
type MedicationInfo struct {
	Success     bool   `json:"success"`
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Schedule    string `json:"schedule"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
