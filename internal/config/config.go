// Package config defines the configuration for the StormSignal alert
// evaluator. Configuration is loaded once at process initialization (Lambda
// Cold Start) and is immutable thereafter; no value changes between
// invocations of a warm container.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format fails the load immediately
// (fail fast); the entrypoint exits rather than serving invocations with a
// partial configuration.
package config

import (
	"time"

	"stormsignal/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// cold start and never modified. Components receive only the subsets they
// require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Weather       WeatherConfig
	Notify        NotifyConfig
	Alert         AlertConfig
	AWS           AWSConfig
	Observability ObservabilityConfig
}

// WeatherConfig holds the upstream weather provider settings.
type WeatherConfig struct {
	// Resolved from SSM or Env
	APIKey SecretString `envconfig:"OPENWEATHER_API_KEY" validate:"required"`

	// City is the single configured location to evaluate.
	City string `envconfig:"CITY_NAME" validate:"required"`

	// BaseURL allows pointing at a stub server in local dev and tests.
	BaseURL string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org"`
	Timeout time.Duration `envconfig:"WEATHER_HTTP_TIMEOUT" default:"10s"`
}

// NotifyConfig holds the notification dispatch settings.
type NotifyConfig struct {
	// TopicARN is the SNS topic the alert is published to.
	TopicARN string `envconfig:"SNS_TOPIC_ARN" validate:"required"`
}

// AlertConfig holds the alert policy values. The defaults reproduce the fixed
// policy (35 degrees C, rain or storm); overriding them does not change the
// shape of the predicate, only its constants.
type AlertConfig struct {
	TemperatureThresholdC float64  `envconfig:"ALERT_TEMP_THRESHOLD_C" default:"35"`
	Conditions            []string `envconfig:"ALERT_CONDITIONS" default:"rain,storm"`
}

// AWSConfig holds regional AWS configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"StormSignal"`
}
