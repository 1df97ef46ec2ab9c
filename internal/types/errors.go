package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. The prefix of each code maps it to one of the three
// failure classes surfaced to the Lambda host: configuration, provider, notify.
const (
	// Configuration (missing or invalid required values)
	ErrCodeConfigMissingValue ErrorCode = "config_missing_required_value"
	ErrCodeConfigParsing      ErrorCode = "config_parsing_failed"
	ErrCodeConfigValidation   ErrorCode = "config_validation_failed"
	ErrCodeConfigSecret       ErrorCode = "config_secret_resolution_failed"

	// Provider (weather upstream unreachable or unusable)
	ErrCodeProviderUnavailable  ErrorCode = "provider_unavailable"
	ErrCodeProviderRateLimited  ErrorCode = "provider_rate_limited"
	ErrCodeProviderBadResponse  ErrorCode = "provider_malformed_response"
	ErrCodeProviderCityNotFound ErrorCode = "provider_city_not_found"
	ErrCodeProviderAuthRejected ErrorCode = "provider_auth_rejected"

	// Notify (SNS publish failures)
	ErrCodeNotifyPublishFailed ErrorCode = "notify_publish_failed"
	ErrCodeNotifyTargetInvalid ErrorCode = "notify_target_invalid"
	ErrCodeNotifyThrottled     ErrorCode = "notify_throttled"
	ErrCodeNotifyUnauthorized  ErrorCode = "notify_unauthorized"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error type. All domain errors are
// expressed as AppError to enable consistent classification and error chain
// support. None of these are caught or retried internally; they propagate to
// the invocation host, which marks the invocation failed and logs the cause.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// hasClassPrefix reports whether err carries an AppError whose code starts
// with the given class prefix.
func hasClassPrefix(err error, prefix string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return strings.HasPrefix(string(appErr.Code), prefix)
}

// IsConfigurationError reports whether err is a configuration failure
// (missing or invalid required config values).
func IsConfigurationError(err error) bool {
	return hasClassPrefix(err, "config_")
}

// IsProviderError reports whether err is a weather provider failure
// (network failure or unparseable upstream response).
func IsProviderError(err error) bool {
	return hasClassPrefix(err, "provider_")
}

// IsNotifyError reports whether err is a notification publish failure.
func IsNotifyError(err error) bool {
	return hasClassPrefix(err, "notify_")
}
