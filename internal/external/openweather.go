package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stormsignal/internal/types"
)

// owmPath is the OpenWeatherMap current-weather endpoint path.
const owmPath = "/data/2.5/weather"

// OpenWeatherClientConfig holds the configuration for creating an
// OpenWeatherClient.
type OpenWeatherClientConfig struct {
	// APIKey authenticates requests via the appid query parameter.
	APIKey types.SecretString
	// BaseURL is the provider origin, e.g. https://api.openweathermap.org.
	// A stub server URL is injected here in tests and local dev.
	BaseURL string
	// Logger for weather fetch operations.
	Logger *slog.Logger
}

// OpenWeatherClient implements types.WeatherProvider against the
// OpenWeatherMap current-weather API. Requests always ask for metric units.
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
	nowFn   func() time.Time
}

// NewOpenWeatherClient creates an OpenWeatherClient on top of the given
// BaseClient.
func NewOpenWeatherClient(base *BaseClient, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherClient{
		base:   base,
		apiKey: cfg.APIKey,
		// A trailing slash on the configured base URL would double up against
		// the endpoint path.
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
		nowFn:   time.Now,
	}
}

// owmResponse mirrors the subset of the OpenWeatherMap current-weather
// payload the evaluator consumes: {main:{temp:number}, weather:[{main:string}]}.
// Pointer fields distinguish absent values from zero values.
type owmResponse struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Current fetches the current weather for the given city in metric units.
//
// An empty API key fails before any network call with a configuration error.
// Transport failures and 5xx/429 map to provider_unavailable /
// provider_rate_limited via the BaseClient; 401/403 map to
// provider_auth_rejected, 404 to provider_city_not_found. A 200 body missing
// main.temp or weather[0].main maps to provider_malformed_response.
func (c *OpenWeatherClient) Current(ctx context.Context, city string) (*types.WeatherReading, error) {
	if c.apiKey.Unmask() == "" {
		return nil, types.NewAppError(
			types.ErrCodeConfigMissingValue,
			"weather provider API key is not configured",
			nil,
		)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey.Unmask())
	query.Set("units", "metric")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, owmPath, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to build weather request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, types.NewAppError(
			types.ErrCodeProviderAuthRejected,
			"weather provider rejected the API key",
			nil,
		)
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.NewAppError(
			types.ErrCodeProviderCityNotFound,
			fmt.Sprintf("weather provider does not know city %q", city),
			nil,
		)
	default:
		return nil, types.NewAppError(
			types.ErrCodeProviderUnavailable,
			fmt.Sprintf("weather provider returned unexpected status %d", resp.StatusCode),
			nil,
		)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeProviderBadResponse,
			"failed to decode weather response body",
			err,
		)
	}

	if body.Main == nil || body.Main.Temp == nil {
		return nil, types.NewAppError(
			types.ErrCodeProviderBadResponse,
			"weather response missing main.temp",
			nil,
		)
	}
	if len(body.Weather) == 0 || body.Weather[0].Main == "" {
		return nil, types.NewAppError(
			types.ErrCodeProviderBadResponse,
			"weather response missing weather[0].main",
			nil,
		)
	}

	reading := &types.WeatherReading{
		City:         city,
		TemperatureC: *body.Main.Temp,
		Condition:    body.Weather[0].Main,
		ObservedAt:   c.nowFn().UTC(),
	}

	c.logger.InfoContext(ctx, "fetched current weather",
		"city", city,
		"temperature_c", reading.TemperatureC,
		"condition", reading.Condition,
	)

	return reading, nil
}

// Compile-time assertion that OpenWeatherClient satisfies WeatherProvider.
var _ types.WeatherProvider = (*OpenWeatherClient)(nil)
