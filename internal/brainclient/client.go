package brainclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/zima/internal/constants"
	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrUnreachable is returned for transport failures and timeouts.
	ErrUnreachable = errors.New("cannot connect to brain node")
	// ErrStatus is returned for non-2xx replies.
	ErrStatus = errors.New("brain node returned error status")
	// ErrNonJSON is returned when the reply is not application/json.
	ErrNonJSON = errors.New("non-JSON response from brain node")
	// ErrRejected is returned when the reply carries success=false or lacks expected fields.
	ErrRejected = errors.New("brain node rejected request")
)

// BrainAPI is the brain node surface the hardware node depends on.
type BrainAPI interface {
	Heartbeat(ctx context.Context) (models.Heartbeat, error)
	Register(ctx context.Context, payload models.RegistrationPayload) (models.RegistrationResponse, error)
	Chat(ctx context.Context, req models.ChatRequest) (string, error)
	Schedule(ctx context.Context) (models.Schedule, error)
	MedicationInfo(ctx context.Context, slot int) (models.MedicationInfo, error)
	Users(ctx context.Context) ([]models.UserProfile, error)
	SelectUser(ctx context.Context, id string) (models.UserProfile, error)
	AddUser(ctx context.Context, profile models.UserProfile) (string, error)
	URL() string
}

// Client calls the brain node's JSON API.
type Client struct {
	BaseURL string
	Logger  zerolog.Logger

	api  *http.Client
	chat *http.Client
}

// NewClient creates a client. Chat calls wait on text generation and get their own, longer timeout.
func NewClient(baseURL string, timeout, chatTimeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Logger:  logger,
		api:     &http.Client{Timeout: timeout},
		chat:    &http.Client{Timeout: chatTimeout},
	}
}

func (c *Client) URL() string { return c.BaseURL }

// Heartbeat probes /api/heartbeat. Any reply other than status "ok" is an error.
func (c *Client) Heartbeat(ctx context.Context) (models.Heartbeat, error) {
	var hb models.Heartbeat
	if err := c.call(ctx, c.api, http.MethodGet, "/api/heartbeat", nil, &hb); err != nil {
		return hb, err
	}
	if hb.Status != constants.StatusOK {
		return hb, fmt.Errorf("%w: heartbeat status %q", ErrRejected, hb.Status)
	}
	return hb, nil
}

func (c *Client) Register(ctx context.Context, payload models.RegistrationPayload) (models.RegistrationResponse, error) {
	var resp models.RegistrationResponse
	err := c.call(ctx, c.api, http.MethodPost, "/api/register_client", payload, &resp)
	return resp, err
}

// Chat forwards a message to /api/chat and returns the generated text.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	var resp struct {
		Response *string `json:"response"`
	}
	if err := c.call(ctx, c.chat, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", fmt.Errorf("%w: missing response text", ErrRejected)
	}
	return *resp.Response, nil
}

func (c *Client) Schedule(ctx context.Context) (models.Schedule, error) {
	var resp struct {
		Upcoming *models.ScheduleEntry `json:"upcoming"`
		Today    []models.ScheduleEntry `json:"today"`
	}
	if err := c.call(ctx, c.api, http.MethodGet, "/api/get_schedule", nil, &resp); err != nil {
		return models.Schedule{}, err
	}
	if resp.Upcoming == nil || resp.Today == nil {
		return models.Schedule{}, fmt.Errorf("%w: malformed schedule", ErrRejected)
	}
	return models.Schedule{Success: true, Upcoming: *resp.Upcoming, Today: resp.Today}, nil
}

func (c *Client) MedicationInfo(ctx context.Context, slot int) (models.MedicationInfo, error) {
	var info models.MedicationInfo
	if err := c.call(ctx, c.api, http.MethodGet, "/api/get_medication_info/"+strconv.Itoa(slot), nil, &info); err != nil {
		return info, err
	}
	if info.Name == "" {
		return info, fmt.Errorf("%w: missing name for slot %d", ErrRejected, slot)
	}
	return info, nil
}

func (c *Client) Users(ctx context.Context) ([]models.UserProfile, error) {
	var resp struct {
		Users []models.UserProfile `json:"users"`
	}
	if err := c.call(ctx, c.api, http.MethodGet, "/api/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) SelectUser(ctx context.Context, id string) (models.UserProfile, error) {
	var resp struct {
		User *models.UserProfile `json:"user"`
	}
	if err := c.call(ctx, c.api, http.MethodPost, "/api/select_user", map[string]string{"user_id": id}, &resp); err != nil {
		return models.UserProfile{}, err
	}
	if resp.User == nil {
		return models.UserProfile{}, fmt.Errorf("%w: missing user", ErrRejected)
	}
	return *resp.User, nil
}

func (c *Client) AddUser(ctx context.Context, profile models.UserProfile) (string, error) {
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.call(ctx, c.api, http.MethodPost, "/api/add_user", profile, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("%w: missing user_id", ErrRejected)
	}
	return resp.UserID, nil
}

// call performs one request and decodes a JSON reply into out.
func (c *Client) call(ctx context.Context, client *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug().Str("method", method).Str("url", url).Msg("Calling brain API")
	resp, err := client.Do(req)
	if err != nil {
		c.Logger.Error().Err(err).Str("url", url).Msg("Connection error to brain node")
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Error().Int("status", resp.StatusCode).Str("url", url).Msg("Brain API call HTTP error")
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		c.Logger.Warn().Str("url", url).Str("content_type", mediaType).Msg("Brain API response is not JSON")
		return ErrNonJSON
	}

	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrNonJSON, err)
	}
	if envelope.Success != nil && !*envelope.Success {
		return fmt.Errorf("%w: %s", ErrRejected, envelope.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrNonJSON, err)
	}
	return nil
}
