// Package types defines the shared domain model for the StormSignal alert
// evaluator: the weather reading produced by the upstream provider, the result
// record returned to the Lambda host, the error taxonomy, and the narrow
// collaborator interfaces that allow substitution with test doubles.
package types

import (
	"context"
	"time"
)

// WeatherReading is a snapshot of current conditions for one city, created
// fresh per invocation from the provider response. It is never persisted;
// no entity outlives a single invocation.
type WeatherReading struct {
	// City is the configured city name the reading was fetched for.
	City string `json:"city"`
	// TemperatureC is the current temperature in degrees Celsius
	// (metric units are requested from the provider).
	TemperatureC float64 `json:"temperature_c"`
	// Condition is the provider's enumerated weather category,
	// e.g. "Clear", "Rain", "Storm".
	Condition string `json:"condition"`
	// ObservedAt is when the reading was obtained.
	ObservedAt time.Time `json:"observed_at"`
}

// ResultStatus is the outcome of a single evaluator invocation.
type ResultStatus string

const (
	// StatusAlertSent indicates the alert predicate held and a notification
	// was published.
	StatusAlertSent ResultStatus = "Alert sent"
	// StatusNoAlertNeeded indicates the predicate did not hold; no
	// notification was published.
	StatusNoAlertNeeded ResultStatus = "No alert needed"
)

// ResultRecord is the JSON-serializable record returned to the invocation
// caller. It is a pure function of the weather reading (aside from the
// notify side effect) and is not persisted.
type ResultRecord struct {
	Status  ResultStatus `json:"status"`
	Details string       `json:"details"`
}

// WeatherProvider fetches current weather for a city. Implementations live in
// internal/external; the evaluator depends only on this capability.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*WeatherReading, error)
}

// Notifier publishes an alert to a notification target (an SNS topic ARN).
// It returns the provider-assigned message ID on success. Fire-and-forget
// from the evaluator's perspective: success or failure is reported
// synchronously and never retried here.
type Notifier interface {
	Publish(ctx context.Context, target, subject, message string) (string, error)
}

// Logger is the narrow logging interface passed to components that should not
// depend on a concrete logging implementation. *slog.Logger satisfies the
// first three methods but With returns *slog.Logger, so entrypoints wrap it
// in a small adapter.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}
