package chatlog

import (
	"sync"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/utils"
	"github.com/google/uuid"
)

// Log is the hardware node's in-memory conversation. It is unbounded and lost on restart.
type Log struct {
	mu      sync.RWMutex
	entries []models.ChatEntry
	now     func() time.Time
}

// New creates an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// Append records a message and returns the stored entry.
func (l *Log) Append(entryType, sender, message string) models.ChatEntry {
	entry := models.ChatEntry{
		ID:        uuid.NewString(),
		Type:      entryType,
		Sender:    sender,
		Message:   message,
		Timestamp: utils.ClockTime(l.now()),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// System records a system notice.
func (l *Log) System(sender, message string) models.ChatEntry {
	return l.Append(constants.ChatTypeSystem, sender, message)
}

// Error records an error notice.
func (l *Log) Error(sender, message string) models.ChatEntry {
	return l.Append(constants.ChatTypeError, sender, message)
}

// Entries returns a copy of the log in insertion order.
func (l *Log) Entries() []models.ChatEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
