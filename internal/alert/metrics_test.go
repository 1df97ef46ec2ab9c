package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"stormsignal/internal/types"
)

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// mockLogger records error log entries.
type mockLogger struct {
	errorMsgs []string
}

func (l *mockLogger) Info(msg string, args ...any)  {}
func (l *mockLogger) Warn(msg string, args ...any)  {}
func (l *mockLogger) Error(msg string, args ...any) { l.errorMsgs = append(l.errorMsgs, msg) }
func (l *mockLogger) With(args ...any) types.Logger { return l }

func TestCloudWatchEvaluationMetrics_RecordOutcome(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchEvaluationMetrics(cw, "StormSignal", "Lisbon", &mockLogger{})

	metrics.RecordOutcome(context.Background(), OutcomeAlertSent)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.calls))
	}

	input := cw.calls[0]
	if *input.Namespace != "StormSignal" {
		t.Errorf("namespace = %q, want %q", *input.Namespace, "StormSignal")
	}

	if len(input.MetricData) != 1 {
		t.Fatalf("expected 1 metric datum, got %d", len(input.MetricData))
	}

	datum := input.MetricData[0]
	if *datum.MetricName != MetricEvaluationOutcome {
		t.Errorf("metric name = %q, want %q", *datum.MetricName, MetricEvaluationOutcome)
	}
	if *datum.Value != 1.0 {
		t.Errorf("value = %f, want 1.0", *datum.Value)
	}
	if datum.Unit != cwtypes.StandardUnitCount {
		t.Errorf("unit = %s, want Count", datum.Unit)
	}

	dims := map[string]string{}
	for _, d := range datum.Dimensions {
		dims[*d.Name] = *d.Value
	}
	if dims[DimOutcome] != string(OutcomeAlertSent) {
		t.Errorf("Outcome dimension = %q, want %q", dims[DimOutcome], OutcomeAlertSent)
	}
	if dims[DimCity] != "Lisbon" {
		t.Errorf("City dimension = %q, want %q", dims[DimCity], "Lisbon")
	}
}

func TestCloudWatchEvaluationMetrics_RecordLatency(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchEvaluationMetrics(cw, "StormSignal", "Lisbon", &mockLogger{})

	metrics.RecordLatency(context.Background(), 250*time.Millisecond)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.calls))
	}

	datum := cw.calls[0].MetricData[0]
	if *datum.MetricName != MetricEvaluationLatency {
		t.Errorf("metric name = %q, want %q", *datum.MetricName, MetricEvaluationLatency)
	}
	if *datum.Value != 250.0 {
		t.Errorf("value = %f, want 250.0", *datum.Value)
	}
	if datum.Unit != cwtypes.StandardUnitMilliseconds {
		t.Errorf("unit = %s, want Milliseconds", datum.Unit)
	}
}

func TestCloudWatchEvaluationMetrics_EmissionFailureIsSwallowed(t *testing.T) {
	cw := &mockCloudWatchClient{returnErr: errors.New("throttled")}
	logger := &mockLogger{}
	metrics := NewCloudWatchEvaluationMetrics(cw, "StormSignal", "Lisbon", logger)

	// Must not panic or propagate: metric failures never fail the evaluation.
	metrics.RecordOutcome(context.Background(), OutcomeNoAlertNeeded)
	metrics.RecordLatency(context.Background(), time.Second)

	if len(logger.errorMsgs) != 2 {
		t.Errorf("expected 2 logged errors, got %d", len(logger.errorMsgs))
	}
}
