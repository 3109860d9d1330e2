package brainclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, time.Second, zerolog.Nop())
}

func TestHeartbeat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Heartbeat{Status: "ok", ClientsCount: 2})
	})
	c := newTestClient(t, mux)

	hb, err := c.Heartbeat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hb.ClientsCount)
}

func TestHeartbeat_Failures(t *testing.T) {
	mux := http.NewServeMux()
	c := newTestClient(t, mux)

	_, err := c.Heartbeat(context.Background())
	assert.ErrorIs(t, err, ErrStatus)

	mux.HandleFunc("/api/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>"))
	})
	_, err = c.Heartbeat(context.Background())
	assert.ErrorIs(t, err, ErrNonJSON)

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond, time.Second, zerolog.Nop())
	_, err = down.Heartbeat(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestChatAndUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": "echo: " + req.Message})
	})
	mux.HandleFunc("/api/select_user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "User not found"})
	})
	mux.HandleFunc("/api/add_user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_id": "7"})
	})
	c := newTestClient(t, mux)

	text, err := c.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", text)

	_, err = c.SelectUser(context.Background(), "9")
	assert.ErrorIs(t, err, ErrRejected)

	id, err := c.AddUser(context.Background(), models.UserProfile{Personal: models.PersonalInfo{Name: "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "7", id)
}

func TestSchedule_Malformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get_schedule", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"today": "nope"})
	})
	c := newTestClient(t, mux)

	_, err := c.Schedule(context.Background())
	assert.Error(t, err)
}
