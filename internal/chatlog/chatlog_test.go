package chatlog

import (
	"sync"
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	l := New()
	l.now = func() time.Time { return time.Date(2025, 1, 1, 9, 5, 7, 0, time.UTC) }

	first := l.System(constants.SenderSystem, "Pill pickup detected")
	l.Error(constants.SenderSystem, "EMERGENCY ALERT TRIGGERED FROM UI")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, "09:05:07", entries[0].Timestamp)
	assert.Equal(t, constants.ChatTypeError, entries[1].Type)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestAppend_Concurrent(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(constants.ChatTypeUser, constants.SenderUser, "hi")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}
