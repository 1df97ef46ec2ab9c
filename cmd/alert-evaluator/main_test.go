package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"stormsignal/internal/alert"
	"stormsignal/internal/config"
	"stormsignal/internal/types"
)

type stubProvider struct {
	reading *types.WeatherReading
	err     error
	calls   int
}

func (p *stubProvider) Current(_ context.Context, _ string) (*types.WeatherReading, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.reading, nil
}

type stubNotifier struct {
	calls int
}

func (n *stubNotifier) Publish(_ context.Context, _, _, _ string) (string, error) {
	n.calls++
	return "msg-1", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEvaluator(t *testing.T, provider types.WeatherProvider, notifier types.Notifier) *alert.Evaluator {
	t.Helper()
	evaluator, err := alert.NewEvaluator(alert.EvaluatorConfig{
		Provider:  provider,
		Notifier:  notifier,
		Policy:    alert.DefaultPolicy(),
		City:      "Lisbon",
		TargetARN: "arn:aws:sns:eu-west-1:123456789012:weather-alerts",
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return evaluator
}

// TestNewLogger verifies that the logger factory handles various log levels.
func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(tt.level)
			if logger == nil {
				t.Fatalf("newLogger(%q) returned nil", tt.level)
			}
			if !logger.Enabled(context.Background(), tt.want) {
				t.Errorf("newLogger(%q) does not enable level %v", tt.level, tt.want)
			}
			if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
				t.Errorf("newLogger(%q) enables levels below %v", tt.level, tt.want)
			}
		})
	}
}

// TestNewAWSConfig verifies that the configured region and the optional
// LocalStack endpoint override are applied to the SDK configuration.
func TestNewAWSConfig(t *testing.T) {
	awsCfg, err := newAWSConfig(context.Background(), config.AWSConfig{
		Region:      "eu-west-1",
		EndpointURL: "http://localhost:4566",
	})
	if err != nil {
		t.Fatalf("newAWSConfig() error = %v", err)
	}
	if awsCfg.Region != "eu-west-1" {
		t.Errorf("Region = %q, want %q", awsCfg.Region, "eu-west-1")
	}
	if awsCfg.BaseEndpoint == nil || *awsCfg.BaseEndpoint != "http://localhost:4566" {
		t.Errorf("BaseEndpoint = %v, want http://localhost:4566", awsCfg.BaseEndpoint)
	}
}

func TestNewAWSConfigNoEndpointOverride(t *testing.T) {
	awsCfg, err := newAWSConfig(context.Background(), config.AWSConfig{Region: "us-east-1"})
	if err != nil {
		t.Fatalf("newAWSConfig() error = %v", err)
	}
	if awsCfg.BaseEndpoint != nil {
		t.Errorf("BaseEndpoint = %q, want nil when AWS_ENDPOINT_URL is unset", *awsCfg.BaseEndpoint)
	}
}

func TestHandlerReturnsEvaluationResult(t *testing.T) {
	provider := &stubProvider{reading: &types.WeatherReading{
		City:         "Lisbon",
		TemperatureC: 21,
		Condition:    "Clear",
	}}
	notifier := &stubNotifier{}
	handler := newHandler(newTestEvaluator(t, provider, notifier), discardLogger())

	result, err := handler(context.Background(), events.CloudWatchEvent{Source: "aws.events"})
	if err != nil {
		t.Fatalf("handler() error = %v", err)
	}
	if result.Status != types.StatusNoAlertNeeded {
		t.Errorf("Status = %q, want %q", result.Status, types.StatusNoAlertNeeded)
	}
	if notifier.calls != 0 {
		t.Errorf("notifier calls = %d, want 0", notifier.calls)
	}
}

func TestHandlerPropagatesEvaluationFailure(t *testing.T) {
	provider := &stubProvider{err: types.NewAppError(
		types.ErrCodeProviderUnavailable, "weather provider unreachable", nil,
	)}
	handler := newHandler(newTestEvaluator(t, provider, &stubNotifier{}), discardLogger())

	_, err := handler(context.Background(), events.CloudWatchEvent{})
	if err == nil {
		t.Fatal("handler() error = nil, want provider error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("handler() error = %v, want *types.AppError", err)
	}
	if !types.IsProviderError(err) {
		t.Errorf("IsProviderError(%v) = false, want true", err)
	}
	if !strings.Contains(err.Error(), "alert evaluation failed") {
		t.Errorf("error = %q, want context prefix", err.Error())
	}
}

func TestHandlerIgnoresEventPayload(t *testing.T) {
	// The schedule event carries no evaluator input; any payload must produce
	// the same evaluation.
	payloads := []events.CloudWatchEvent{
		{},
		{Source: "aws.events", DetailType: "Scheduled Event"},
		{Source: "custom.manual-trigger", Detail: []byte(`{"city":"Oslo"}`)},
	}

	for _, event := range payloads {
		provider := &stubProvider{reading: &types.WeatherReading{
			City:         "Lisbon",
			TemperatureC: 40,
			Condition:    "Clear",
		}}
		notifier := &stubNotifier{}
		handler := newHandler(newTestEvaluator(t, provider, notifier), discardLogger())

		result, err := handler(context.Background(), event)
		if err != nil {
			t.Fatalf("handler() error = %v", err)
		}
		if result.Status != types.StatusAlertSent {
			t.Errorf("Status = %q, want %q", result.Status, types.StatusAlertSent)
		}
		if provider.calls != 1 || notifier.calls != 1 {
			t.Errorf("calls = provider %d / notifier %d, want 1 / 1", provider.calls, notifier.calls)
		}
	}
}
