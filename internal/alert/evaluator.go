package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"stormsignal/internal/types"
)

// Evaluator runs one complete alert evaluation per invocation: fetch the
// current weather for the configured city, apply the policy, publish a
// notification if the policy triggers, and return a ResultRecord.
//
// Each invocation is independent and stateless; the Evaluator holds only
// immutable configuration and its collaborators. A failure at any step aborts
// the invocation entirely — there is no partial-success state and nothing is
// retried here.
type Evaluator struct {
	provider types.WeatherProvider
	notifier types.Notifier
	metrics  EvaluationMetrics
	policy   Policy
	city     string
	target   string
	logger   *slog.Logger
	nowFn    func() time.Time
}

// EvaluatorConfig holds the dependencies and configuration for an Evaluator.
type EvaluatorConfig struct {
	Provider types.WeatherProvider
	Notifier types.Notifier
	// Metrics is optional; nil disables metric emission.
	Metrics EvaluationMetrics
	Policy  Policy
	// City is the location evaluated every invocation.
	City string
	// TargetARN is the SNS topic the alert is published to.
	TargetARN string
	Logger    *slog.Logger
}

// NewEvaluator creates an Evaluator, validating that the required
// configuration and collaborators are present. Missing values are reported
// as configuration errors before any network activity can occur.
func NewEvaluator(cfg EvaluatorConfig) (*Evaluator, error) {
	if cfg.City == "" {
		return nil, types.NewAppError(types.ErrCodeConfigMissingValue, "city name is not configured", nil)
	}
	if cfg.TargetARN == "" {
		return nil, types.NewAppError(types.ErrCodeConfigMissingValue, "notification target ARN is not configured", nil)
	}
	if cfg.Provider == nil {
		return nil, types.NewAppError(types.ErrCodeConfigMissingValue, "weather provider is not configured", nil)
	}
	if cfg.Notifier == nil {
		return nil, types.NewAppError(types.ErrCodeConfigMissingValue, "notifier is not configured", nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &Evaluator{
		provider: cfg.Provider,
		notifier: cfg.Notifier,
		metrics:  metrics,
		policy:   cfg.Policy,
		city:     cfg.City,
		target:   cfg.TargetARN,
		logger:   logger,
		nowFn:    time.Now,
	}, nil
}

// Evaluate performs a single evaluation pass and returns the ResultRecord.
//
// Errors propagate unmodified save for message context: a provider failure
// surfaces as a provider_* AppError with the notifier never invoked, and a
// publish failure surfaces as a notify_* AppError with no ResultRecord.
func (e *Evaluator) Evaluate(ctx context.Context) (*types.ResultRecord, error) {
	start := e.nowFn()

	reading, err := e.provider.Current(ctx, e.city)
	if err != nil {
		e.recordFailure(ctx, err, start)
		return nil, fmt.Errorf("fetch current weather: %w", err)
	}

	decision := e.policy.Evaluate(*reading)

	if !decision.Triggered {
		details := fmt.Sprintf("No alert needed for %s: current temperature %s, condition %s.",
			reading.City, formatTemp(reading.TemperatureC), reading.Condition)

		e.logger.InfoContext(ctx, "alert predicate not met",
			"city", reading.City,
			"temperature_c", reading.TemperatureC,
			"condition", reading.Condition,
		)

		e.recordOutcome(ctx, OutcomeNoAlertNeeded, start)
		return &types.ResultRecord{
			Status:  types.StatusNoAlertNeeded,
			Details: details,
		}, nil
	}

	subject := fmt.Sprintf("Weather Alert: %s in %s", reading.Condition, reading.City)
	message := fmt.Sprintf("Alert conditions detected in %s: current temperature %s, condition %s (%s).",
		reading.City, formatTemp(reading.TemperatureC), reading.Condition, decision.Reason)

	msgID, err := e.notifier.Publish(ctx, e.target, subject, message)
	if err != nil {
		e.recordFailure(ctx, err, start)
		return nil, fmt.Errorf("publish alert notification: %w", err)
	}

	e.logger.InfoContext(ctx, "alert notification sent",
		"city", reading.City,
		"temperature_c", reading.TemperatureC,
		"condition", reading.Condition,
		"reason", decision.Reason,
		"message_id", msgID,
	)

	e.recordOutcome(ctx, OutcomeAlertSent, start)
	return &types.ResultRecord{
		Status:  types.StatusAlertSent,
		Details: message,
	}, nil
}

// recordOutcome emits the outcome and latency metrics for a completed
// evaluation.
func (e *Evaluator) recordOutcome(ctx context.Context, outcome Outcome, start time.Time) {
	e.metrics.RecordOutcome(ctx, outcome)
	e.metrics.RecordLatency(ctx, e.nowFn().Sub(start))
}

// recordFailure emits the outcome metric for a failed evaluation, classified
// by error class.
func (e *Evaluator) recordFailure(ctx context.Context, err error, start time.Time) {
	outcome := OutcomeInternalError
	switch {
	case types.IsConfigurationError(err):
		outcome = OutcomeConfigError
	case types.IsProviderError(err):
		outcome = OutcomeProviderError
	case types.IsNotifyError(err):
		outcome = OutcomeNotifyError
	}
	e.metrics.RecordOutcome(ctx, outcome)
	e.metrics.RecordLatency(ctx, e.nowFn().Sub(start))
}

// formatTemp renders a Celsius value without trailing zeros, so 36.0 renders
// as "36C" and 22.5 as "22.5C".
func formatTemp(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64) + "C"
}
