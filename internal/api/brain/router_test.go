package brain

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/zima/internal/assistant"
	"github.com/benmeehan/zima/internal/clients"
	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/mocks"
	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/internal/users"
	"github.com/benmeehan/zima/pkg/file"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// httptest.NewRequest always reports this caller address.
const caller = "192.0.2.1"

type fixture struct {
	handler  http.Handler
	registry *clients.Registry
	executor *mocks.MockExecutor
	chatter  *mocks.MockChatter
	llm      *mocks.MockGenerator
	users    *users.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gate, err := clients.NewVersionGate(">= 1.0.0")
	require.NoError(t, err)
	registry, err := clients.NewRegistry(gate, constants.TargetCallerOrFirst, zerolog.Nop())
	require.NoError(t, err)
	store, err := users.NewStore(t.TempDir(), file.NewFileService(), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		registry: registry,
		executor: &mocks.MockExecutor{},
		chatter:  &mocks.MockChatter{},
		llm:      &mocks.MockGenerator{},
		users:    store,
	}
	f.handler = NewRouter(&Handlers{
		Registry:  registry,
		Executor:  f.executor,
		Assistant: f.chatter,
		Users:     store,
		LLM:       f.llm,
		DataDir:   "zima_data",
		Logger:    zerolog.Nop(),
		now: func() time.Time {
			return time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
		},
	})
	return f
}

func (f *fixture) register(t *testing.T, address string) {
	t.Helper()
	_, err := f.registry.Register(address, models.RegistrationPayload{
		ClientType:    constants.ClientTypeRaspberryPi,
		ClientVersion: constants.ClientVersion,
	})
	require.NoError(t, err)
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return rec.Code, out
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	f.register(t, "10.0.0.5")

	code, body := f.do(t, http.MethodGet, "/api/heartbeat", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["clients_count"])
	assert.Equal(t, "2025-03-01T09:15:00.000000", body["server_time"])
}

func TestHeartbeat_RefreshesRegisteredCaller(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/heartbeat", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, f.registry.Count(), "heartbeat must not register unknown callers")

	f.register(t, caller)
	registered, _ := f.registry.Get(caller)

	f.do(t, http.MethodGet, "/api/heartbeat", nil)

	refreshed, ok := f.registry.Get(caller)
	require.True(t, ok)
	assert.False(t, refreshed.LastSeen.Before(registered.LastSeen))
}

func TestRegisterClient(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/register_client", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No client data provided", body["error"])

	code, body = f.do(t, http.MethodPost, "/api/register_client", models.RegistrationPayload{
		ClientType:    constants.ClientTypeRaspberryPi,
		ClientVersion: "0.9.0",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, body = f.do(t, http.MethodPost, "/api/register_client", models.RegistrationPayload{
		ClientType:    constants.ClientTypeRaspberryPi,
		ClientVersion: constants.ClientVersion,
		HardwareMode:  constants.HardwareModeMock,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Client registered successfully", body["message"])
	assert.Equal(t, caller, body["client_ip"])

	_, listed := f.do(t, http.MethodGet, "/api/clients", nil)
	assert.Equal(t, float64(1), listed["count"])
	assert.Contains(t, listed["clients"], caller)
}

func TestAvailableFunctions(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/available_functions", nil)

	assert.Equal(t, http.StatusOK, code)
	functions := body["functions"].(map[string]any)
	assert.Len(t, functions, 4)
	assert.Contains(t, functions, constants.FunctionDispensePill)
}

func TestManualControl_NoClients(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/servo_rotate"},
		{http.MethodGet, "/api/servo_position/1"},
		{http.MethodPost, "/api/dispense/1"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := f.do(t, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, "No clients available", body["error"])
			assert.Equal(t, "No Raspberry Pi clients are currently connected", body["message"])
		})
	}

	code, body := f.do(t, http.MethodGet, "/check_pill_pickup", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, constants.DistanceUnknown, body["distance_cm"])

	code, _ = f.do(t, http.MethodGet, "/api/weather", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestManualControl_Validation(t *testing.T) {
	f := newFixture(t)
	f.register(t, caller)

	code, body := f.do(t, http.MethodGet, "/api/servo_position/3", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid servo number. Must be 1 or 2", body["error"])

	code, body = f.do(t, http.MethodPost, "/api/dispense/0", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid slot number. Must be 1 or 2", body["error"])
}

func TestServoRotate_DefaultsAndPrefersCaller(t *testing.T) {
	f := newFixture(t)
	f.register(t, "10.0.0.1")
	f.register(t, caller)

	f.executor.On("Execute", mock.Anything, constants.FunctionRotateServo,
		map[string]any{"servo_num": 1, "direction": constants.DirectionClockwise}, caller).
		Return(map[string]any{"success": true, "new_position": float64(90)}, nil)

	code, body := f.do(t, http.MethodPost, "/api/servo_rotate", map[string]any{})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(90), body["new_position"])
	f.executor.AssertExpectations(t)
}

func TestDispense_ForwardsToFirstClient(t *testing.T) {
	f := newFixture(t)
	f.register(t, "10.0.0.9")
	f.register(t, "10.0.0.3")

	f.executor.On("Execute", mock.Anything, constants.FunctionDispensePill, map[string]any{"compartment": 2}, "10.0.0.3").
		Return(map[string]any{"status": "Antibiotic dispensed from compartment 2"}, nil)

	code, body := f.do(t, http.MethodPost, "/api/dispense/2", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Antibiotic dispensed from compartment 2", body["status"])
	f.executor.AssertExpectations(t)
}

func TestCheckPillPickup_FailureReportsSentinel(t *testing.T) {
	f := newFixture(t)
	f.register(t, caller)

	f.executor.On("Execute", mock.Anything, constants.FunctionMeasureDistance, map[string]any{}, caller).
		Return(map[string]any{"success": false, "error": "Client returned status 500"}, nil)

	code, body := f.do(t, http.MethodGet, "/api/check_pill_pickup", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, constants.DistanceUnknown, body["distance_cm"])
}

func TestServoPosition_ProxiesClient(t *testing.T) {
	f := newFixture(t)
	f.register(t, caller)

	f.executor.On("ServoPosition", mock.Anything, caller, 2).
		Return(map[string]any{"success": true, "servo": float64(2), "position": float64(270)}, nil)

	code, body := f.do(t, http.MethodGet, "/api/servo_position/2", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(270), body["position"])
}

func TestExecuteFunction(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/execute_function", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing function_name", body["error"])

	code, body = f.do(t, http.MethodPost, "/api/execute_function", models.FunctionCallRequest{
		FunctionName: constants.FunctionMeasureDistance,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Target client not registered", body["error"])

	f.register(t, "10.0.0.7")
	f.executor.On("Execute", mock.Anything, constants.FunctionMeasureDistance, map[string]any(nil), "10.0.0.7").
		Return(map[string]any{"success": true, "distance_cm": 7.5}, nil)

	code, body = f.do(t, http.MethodPost, "/api/execute_function", models.FunctionCallRequest{
		FunctionName: constants.FunctionMeasureDistance,
		ClientIP:     "10.0.0.7",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 7.5, body["distance_cm"])
}

func TestEmergency_FansOutToEveryClient(t *testing.T) {
	f := newFixture(t)
	f.register(t, "10.0.0.1")
	f.register(t, "10.0.0.2")

	f.executor.On("Alert", mock.Anything, "10.0.0.1", mock.AnythingOfType("models.EmergencyEvent")).Return(nil)
	f.executor.On("Alert", mock.Anything, "10.0.0.2", mock.AnythingOfType("models.EmergencyEvent")).
		Return(assert.AnError)

	code, body := f.do(t, http.MethodPost, "/api/emergency", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Emergency alert has been sent", body["message"])
	f.executor.AssertNumberOfCalls(t, "Alert", 2)
}

func TestChat_DefaultsUserID(t *testing.T) {
	f := newFixture(t)
	f.chatter.On("Chat", mock.Anything, caller, "1", "hello").Return(assistant.Reply{Text: "Hi there"})

	code, body := f.do(t, http.MethodPost, "/chat", models.ChatRequest{Message: "hello"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Hi there", body["response"])
	f.chatter.AssertExpectations(t)
}

func TestSimpleChat(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/simple_chat", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No JSON data", body["error"])

	code, body = f.do(t, http.MethodPost, "/simple_chat", models.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Empty message", body["error"])

	f.register(t, caller)
	f.chatter.On("Respond", mock.Anything, caller, "rotate servo 2").
		Return(assistant.Reply{Text: "Done", Target: caller})

	code, body = f.do(t, http.MethodPost, "/simple_chat", models.ChatRequest{Message: "rotate servo 2"})
	require.Equal(t, http.StatusOK, code)
	debug := body["debug_info"].(map[string]any)
	assert.Equal(t, caller, debug["target_client"])
	assert.Equal(t, float64(1), debug["registered_clients"])
	assert.Equal(t, "1", debug["user_id"])
}

func TestUsers_Lifecycle(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/add_user", models.UserProfile{
		Personal: models.PersonalInfo{Name: "Ada", Age: 71},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1", body["user_id"])

	code, body = f.do(t, http.MethodPost, "/api/users/save", map[string]any{"user_id": "1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing user_id or user_data", body["error"])

	code, _ = f.do(t, http.MethodPost, "/api/users/save", map[string]any{
		"user_id":   "1",
		"user_data": models.UserProfile{Personal: models.PersonalInfo{Name: "Ada L.", Age: 72}},
	})
	assert.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodPost, "/api/select_user", map[string]any{"user_id": "1"})
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ada L.", user["personal"].(map[string]any)["name"])

	code, body = f.do(t, http.MethodPost, "/api/select_user", map[string]any{"user_id": "42"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["error"])

	_, body = f.do(t, http.MethodGet, "/api/users", nil)
	assert.Len(t, body["users"], 1)
}

func TestMedicationInfoAndSchedule(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/get_medication_info/2", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Antibiotic", body["name"])

	code, body = f.do(t, http.MethodGet, "/api/get_medication_info/9", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid slot number", body["error"])

	_, body = f.do(t, http.MethodGet, "/api/get_schedule", nil)
	upcoming := body["upcoming"].(map[string]any)
	assert.Equal(t, "10:00", upcoming["time"])
	assert.Len(t, body["today"], 2)
}

func TestSystemStatus(t *testing.T) {
	f := newFixture(t)
	f.register(t, caller)
	f.llm.On("Status", mock.Anything).Return("online")
	f.llm.On("Model").Return("deepseek-r1:8b")

	code, body := f.do(t, http.MethodGet, "/api/system_status", nil)

	require.Equal(t, http.StatusOK, code)
	server := body["server"].(map[string]any)
	assert.Equal(t, "online", server["status"])
	assert.Equal(t, float64(1), server["registered_clients"])
	llmStatus := body["llm"].(map[string]any)
	assert.Equal(t, "deepseek-r1:8b", llmStatus["model"])
	functions := body["functions"].(map[string]any)
	assert.Equal(t, float64(4), functions["count"])
	assert.NotContains(t, body, "host")
}

func TestDebugRoutes(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/debug/routes", nil)

	require.Equal(t, http.StatusOK, code)
	assert.Greater(t, body["total_routes"], float64(20))
	assert.Len(t, body["chat_routes"], 3)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/nothing", nil)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Endpoint not found", body["error"])
}
