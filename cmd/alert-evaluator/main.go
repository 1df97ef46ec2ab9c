// Package main is the entrypoint for the Alert Evaluator Lambda function.
//
// The Alert Evaluator runs on a fixed schedule via an EventBridge rule. Each
// invocation fetches the current weather for the configured city from
// OpenWeatherMap and publishes an alert to an SNS topic when the temperature
// exceeds the threshold or the reported condition is in the alert set. The
// schedule itself is owned entirely by EventBridge; this function neither
// knows nor cares about its cadence.
//
// This file handles dependency wiring (Cold Start) and delegates the
// evaluation logic to the internal/alert package (Evaluator.Evaluate).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/google/uuid"

	"stormsignal/internal/alert"
	"stormsignal/internal/config"
	"stormsignal/internal/external"
	"stormsignal/internal/types"
)

// userAgent identifies this service on outbound weather requests.
const userAgent = "StormSignal-AlertEvaluator/1.0"

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info/Error/Warn directly but With returns
// *slog.Logger, not types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

func main() {
	// Bootstrap logger for startup diagnostics; replaced with the configured
	// level once configuration has loaded.
	logger := newLogger("info")
	logger.Info("Alert Evaluator Lambda initializing (cold start)")

	ctx := context.Background()

	// Load and validate configuration. The weather API key may arrive via an
	// OPENWEATHER_API_KEY_SSM_PARAM pointer, resolved through SSM here.
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.LogLevel)

	// Load AWS SDK configuration, honoring the configured region and the
	// optional LocalStack endpoint override.
	awsCfg, err := newAWSConfig(ctx, cfg.AWS)
	if err != nil {
		logger.Error("failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	// Outbound weather client: shared HTTP client behind a circuit breaker.
	httpClient := &http.Client{Timeout: cfg.Weather.Timeout}
	base := external.NewBaseClient(httpClient, "openweather", userAgent)
	provider := external.NewOpenWeatherClient(base, external.OpenWeatherClientConfig{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		Logger:  logger,
	})

	// SNS notifier for alert fan-out.
	notifier := external.NewSNSNotifier(awsCfg, logger)

	// CloudWatch metrics.
	cwClient := cloudwatch.NewFromConfig(awsCfg)
	metrics := alert.NewCloudWatchEvaluationMetrics(
		cwClient,
		cfg.Observability.MetricNamespace,
		cfg.Weather.City,
		&slogAdapter{logger: logger},
	)

	evaluator, err := alert.NewEvaluator(alert.EvaluatorConfig{
		Provider:  provider,
		Notifier:  notifier,
		Metrics:   metrics,
		Policy:    alert.NewPolicy(cfg.Alert.TemperatureThresholdC, cfg.Alert.Conditions),
		City:      cfg.Weather.City,
		TargetARN: cfg.Notify.TopicARN,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create evaluator", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert Evaluator Lambda initialized",
		"city", cfg.Weather.City,
		"topic_arn", cfg.Notify.TopicARN,
		"temp_threshold_c", cfg.Alert.TemperatureThresholdC,
		"alert_conditions", cfg.Alert.Conditions,
		"metric_namespace", cfg.Observability.MetricNamespace,
	)

	lambda.Start(newHandler(evaluator, logger))
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}

// newAWSConfig loads the AWS SDK configuration with the configured region.
// When AWS_ENDPOINT_URL is set (LocalStack), all service clients built from
// the returned config are pointed at that endpoint.
func newAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return aws.Config{}, err
	}
	if c.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(c.EndpointURL)
	}
	return awsCfg, nil
}

// newHandler creates the Lambda handler function. The scheduled event payload
// carries no information the evaluator needs; it is accepted and ignored.
// The handler's only job is per-invocation correlation and error surfacing:
// any evaluation failure is returned to the Lambda runtime, which marks the
// invocation failed and leaves logging of the failure to the host.
func newHandler(evaluator *alert.Evaluator, logger *slog.Logger) func(ctx context.Context, event events.CloudWatchEvent) (types.ResultRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, event events.CloudWatchEvent) (types.ResultRecord, error) {
		evalID := uuid.New().String()
		logger.InfoContext(ctx, "alert evaluation invoked",
			"evaluation_id", evalID,
			"trigger_source", event.Source,
		)

		result, err := evaluator.Evaluate(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "alert evaluation failed",
				"evaluation_id", evalID,
				"error", err,
			)
			return types.ResultRecord{}, fmt.Errorf("alert evaluation failed: %w", err)
		}

		logger.InfoContext(ctx, "alert evaluation complete",
			"evaluation_id", evalID,
			"status", string(result.Status),
			"details", result.Details,
		)

		return *result, nil
	}
}
