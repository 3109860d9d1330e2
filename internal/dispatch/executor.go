package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/metrics"
	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrClientNotRegistered is returned when the target address is not in the registry.
	ErrClientNotRegistered = errors.New("client not registered")
	// ErrUnknownFunction is returned for function names outside the catalogue.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrInvalidArgs is returned when a call is missing a required argument.
	ErrInvalidArgs = errors.New("invalid function arguments")
	// ErrClientStatus is returned when the hardware node answers with a non-2xx status.
	ErrClientStatus = errors.New("client returned error status")
	// ErrClientUnreachable is returned for transport failures.
	ErrClientUnreachable = errors.New("failed to communicate with client")
)

// ClientLookup resolves registered hardware nodes.
type ClientLookup interface {
	Get(address string) (models.RegisteredClient, bool)
}

// Executor forwards function calls to registered hardware nodes over HTTP.
type Executor struct {
	Clients    ClientLookup
	HTTPClient *http.Client
	ClientPort int
	Logger     zerolog.Logger
}

// NewExecutor creates an Executor. A zero timeout falls back to ten seconds.
func NewExecutor(clients ClientLookup, clientPort int, timeout time.Duration, logger zerolog.Logger) *Executor {
	if timeout <= 0 {
		timeout = constants.DefaultFunctionTimeout
	}
	return &Executor{
		Clients:    clients,
		HTTPClient: &http.Client{Timeout: timeout},
		ClientPort: clientPort,
		Logger:     logger,
	}
}

// Execute runs function on target and returns the node's JSON body. Every failure also
// yields a {"success": false, "error": ...} envelope so callers can pass it on as is.
func (e *Executor) Execute(ctx context.Context, function string, args map[string]any, target string) (map[string]any, error) {
	result, err := e.execute(ctx, function, args, target)
	metrics.RecordFunctionCall(function, err == nil)
	return result, err
}

func (e *Executor) execute(ctx context.Context, function string, args map[string]any, target string) (map[string]any, error) {
	if _, ok := e.Clients.Get(target); !ok {
		return failure("Client not registered"), fmt.Errorf("%w: %s", ErrClientNotRegistered, target)
	}

	method, path, body, err := e.route(function, args)
	if err != nil {
		if errors.Is(err, ErrUnknownFunction) {
			return failure("Unknown function: " + function), err
		}
		return failure(err.Error()), err
	}

	result, err := e.call(ctx, method, target, path, body)
	if err != nil {
		e.Logger.Error().Err(err).Str("function", function).Str("client", target).Msg("Error executing function")
		return result, err
	}

	e.Logger.Info().Str("function", function).Str("client", target).Msg("Function executed")
	return result, nil
}

// ServoPosition reads a servo's tracked angle from target.
func (e *Executor) ServoPosition(ctx context.Context, target string, servo int) (map[string]any, error) {
	result, err := e.call(ctx, http.MethodGet, target, "/servo_position/"+strconv.Itoa(servo), nil)
	if err != nil {
		result["position"] = 0
	}
	return result, err
}

// Alert posts an emergency event to a node's /emergency_alert endpoint.
func (e *Executor) Alert(ctx context.Context, target string, event models.EmergencyEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = e.call(ctx, http.MethodPost, target, "/emergency_alert", bytes.NewReader(payload))
	return err
}

// call performs one request against a hardware node and decodes its JSON reply.
func (e *Executor) call(ctx context.Context, method, target, path string, body io.Reader) (map[string]any, error) {
	url := fmt.Sprintf("http://%s:%d%s", target, e.ClientPort, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return failure(fmt.Sprintf("Failed to communicate with client: %v", err)), fmt.Errorf("%w: %v", ErrClientUnreachable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return failure(fmt.Sprintf("Failed to communicate with client: %v", err)), fmt.Errorf("%w: %v", ErrClientUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: %d", ErrClientStatus, resp.StatusCode)
		// Nodes explain validation and hardware failures in a JSON envelope; keep it.
		var envelope map[string]any
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			if _, ok := envelope["error"].(string); ok {
				envelope["success"] = false
				return envelope, statusErr
			}
		}
		return failure(fmt.Sprintf("Client returned status %d", resp.StatusCode)), statusErr
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(fmt.Sprintf("Failed to communicate with client: invalid response: %v", err)), fmt.Errorf("%w: decode response: %v", ErrClientUnreachable, err)
	}
	return result, nil
}

// route maps a function to the hardware node endpoint that implements it.
func (e *Executor) route(function string, args map[string]any) (string, string, io.Reader, error) {
	switch function {
	case constants.FunctionGetWeather:
		payload, err := json.Marshal(models.FunctionCallRequest{FunctionName: function, Args: args})
		if err != nil {
			return "", "", nil, err
		}
		return http.MethodPost, "/function_call", bytes.NewReader(payload), nil

	case constants.FunctionRotateServo:
		payload, err := json.Marshal(args)
		if err != nil {
			return "", "", nil, err
		}
		return http.MethodPost, "/servo_rotate", bytes.NewReader(payload), nil

	case constants.FunctionDispensePill:
		compartment, ok := IntArg(args, "compartment")
		if !ok {
			return "", "", nil, fmt.Errorf("%w: compartment is required", ErrInvalidArgs)
		}
		return http.MethodPost, "/dispense/" + strconv.Itoa(compartment), nil, nil

	case constants.FunctionMeasureDistance:
		return http.MethodGet, "/distance", nil, nil
	}
	return "", "", nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
}

// IntArg reads an integer argument that may have travelled through JSON as a float or string.
func IntArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "error": message}
}
