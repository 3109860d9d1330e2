package models

import "time"

// Notification is a caregiver message waiting in the outgoing queue.
type Notification struct {
	Priority  string    `json:"priority"`
	Message   string    `json:"message"` // already prefixed with the priority marker
	CreatedAt time.Time `json:"created_at"`
}
