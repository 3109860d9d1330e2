package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// ErrModelUnavailable is returned when the configured model is missing and could not be pulled.
var ErrModelUnavailable = errors.New("model unavailable")

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
	Status(ctx context.Context) string
	Model() string
}

// ollamaAPI is the subset of *api.Client in use.
type ollamaAPI interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
	List(ctx context.Context) (*api.ListResponse, error)
	Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error
	Heartbeat(ctx context.Context) error
}

// OllamaClient runs prompts against a local Ollama runtime.
type OllamaClient struct {
	api    ollamaAPI
	model  string
	Logger zerolog.Logger
}

// NewOllamaClient creates a client for the runtime at host, e.g. http://localhost:11434.
func NewOllamaClient(host, model string, timeout time.Duration, logger zerolog.Logger) (*OllamaClient, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	client := api.NewClient(base, &http.Client{Timeout: timeout})
	return &OllamaClient{api: client, model: model, Logger: logger}, nil
}

func (c *OllamaClient) Model() string { return c.model }

// Ensure checks the runtime is up and pulls the model when it is not installed.
func (c *OllamaClient) Ensure(ctx context.Context) error {
	list, err := c.api.List(ctx)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}

	for _, m := range list.Models {
		if sameModel(m.Name, c.model) {
			c.Logger.Info().Str("model", c.model).Msg("Ollama setup complete, model is available")
			return nil
		}
	}

	c.Logger.Warn().Str("model", c.model).Msg("Model not found, pulling")
	lastStatus := ""
	err = c.api.Pull(ctx, &api.PullRequest{Model: c.model}, func(p api.ProgressResponse) error {
		if p.Status != lastStatus {
			lastStatus = p.Status
			c.Logger.Info().Str("model", c.model).Str("status", p.Status).Msg("Ollama pull")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: pull %s: %v", ErrModelUnavailable, c.model, err)
	}

	c.Logger.Info().Str("model", c.model).Msg("Successfully pulled model")
	return nil
}

// Generate runs a single non-streaming completion.
func (c *OllamaClient) Generate(ctx context.Context, prompt, system string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Stream: &stream,
	}

	var out strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Status reports "online" when the runtime answers, "offline" otherwise.
func (c *OllamaClient) Status(ctx context.Context) string {
	if err := c.api.Heartbeat(ctx); err != nil {
		return "offline"
	}
	return "online"
}

// IsUpstreamStatus reports whether err is an HTTP error status from the runtime.
func IsUpstreamStatus(err error) bool {
	var se api.StatusError
	return errors.As(err, &se)
}

func sameModel(installed, wanted string) bool {
	if installed == wanted {
		return true
	}
	if !strings.Contains(wanted, ":") {
		return installed == wanted+":latest"
	}
	return false
}
