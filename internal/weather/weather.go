package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/benmeehan/zima/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrNoAPIKey is returned when no OpenWeatherMap key is configured.
	ErrNoAPIKey = errors.New("weather API key not configured")
	// ErrUpstream is returned for network failures and non-2xx replies.
	ErrUpstream = errors.New("weather service unavailable")
	// ErrDecode is returned when the reply cannot be parsed.
	ErrDecode = errors.New("invalid weather response")
)

// Fetcher returns current weather for a city.
type Fetcher interface {
	Current(ctx context.Context, city, units string) (models.WeatherReport, error)
}

// Client talks to the OpenWeatherMap current-weather endpoint.
type Client struct {
	APIKey      string
	BaseURL     string
	DefaultCity string
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// NewClient creates a weather client.
func NewClient(apiKey, baseURL, defaultCity string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		DefaultCity: defaultCity,
		HTTPClient:  &http.Client{Timeout: timeout},
		Logger:      logger,
	}
}

type owmResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the weather for city. On failure the returned report carries
// success=false and a message so callers can relay it as is.
func (c *Client) Current(ctx context.Context, city, units string) (models.WeatherReport, error) {
	if city == "" {
		city = c.DefaultCity
	}
	if units == "" {
		units = "metric"
	}

	if c.APIKey == "" {
		c.Logger.Error().Msg("OpenWeatherMap API key not configured")
		return failed("Weather API key not configured", "Please set weather.api_key in the configuration"), ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.APIKey)
	q.Set("units", units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return failed("Network error", "Failed to fetch weather data: "+err.Error()), fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	c.Logger.Info().Str("city", city).Msg("Fetching weather data")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Error fetching weather data")
		return failed("Network error", "Failed to fetch weather data: "+err.Error()), fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Error().Int("status", resp.StatusCode).Str("city", city).Msg("Weather service returned error status")
		return failed("Network error", fmt.Sprintf("Failed to fetch weather data: status %d", resp.StatusCode)), fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.Logger.Error().Err(err).Msg("Error parsing weather data")
		return failed("Data parsing error", "Invalid response from weather service"), fmt.Errorf("%w: %v", ErrDecode, err)
	}

	report := models.WeatherReport{
		Success:     true,
		City:        body.Name,
		Country:     body.Sys.Country,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Pressure:    body.Main.Pressure,
		WindSpeed:   body.Wind.Speed,
		Units:       units,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if len(body.Weather) > 0 {
		report.Description = body.Weather[0].Description
	}

	c.Logger.Info().Str("city", city).Msg("Weather data retrieved successfully")
	return report, nil
}

// TemperatureUnit returns the display suffix for units.
func TemperatureUnit(units string) string {
	if units == "metric" {
		return "°C"
	}
	return "°F"
}

func failed(label, message string) models.WeatherReport {
	return models.WeatherReport{Success: false, Error: label, Message: message}
}
