package alert

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"stormsignal/internal/types"
)

// Outcome is the metric dimension value describing how an evaluation ended.
type Outcome string

const (
	OutcomeAlertSent     Outcome = "alert_sent"
	OutcomeNoAlertNeeded Outcome = "no_alert_needed"
	OutcomeConfigError   Outcome = "config_error"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeNotifyError   Outcome = "notify_error"
	OutcomeInternalError Outcome = "internal_error"
)

// Metric and dimension names emitted to CloudWatch.
const (
	MetricEvaluationOutcome = "EvaluationOutcome"
	MetricEvaluationLatency = "EvaluationLatency"
	DimOutcome              = "Outcome"
	DimCity                 = "City"
)

// EvaluationMetrics records evaluation telemetry. Implementations must never
// fail the evaluation: metric emission errors are logged and swallowed.
type EvaluationMetrics interface {
	RecordOutcome(ctx context.Context, outcome Outcome)
	RecordLatency(ctx context.Context, duration time.Duration)
}

// NoopMetrics is an EvaluationMetrics that discards everything. Used when no
// metrics client is wired (local development, unit tests).
type NoopMetrics struct{}

func (NoopMetrics) RecordOutcome(context.Context, Outcome)       {}
func (NoopMetrics) RecordLatency(context.Context, time.Duration) {}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchEvaluationMetrics implements EvaluationMetrics by emitting
// metrics to AWS CloudWatch.
//
// Metrics emitted:
//   - EvaluationOutcome: Dims {Outcome, City} — on every evaluation end
//   - EvaluationLatency: Dims {City} — wall time of the evaluation pass
type CloudWatchEvaluationMetrics struct {
	client    CloudWatchClient
	namespace string
	city      string
	logger    types.Logger
}

// NewCloudWatchEvaluationMetrics creates metrics publishing to the given
// CloudWatch namespace, tagged with the configured city.
func NewCloudWatchEvaluationMetrics(client CloudWatchClient, namespace, city string, logger types.Logger) *CloudWatchEvaluationMetrics {
	return &CloudWatchEvaluationMetrics{
		client:    client,
		namespace: namespace,
		city:      city,
		logger:    logger,
	}
}

// RecordOutcome emits an EvaluationOutcome count with Outcome and City
// dimensions.
func (m *CloudWatchEvaluationMetrics) RecordOutcome(ctx context.Context, outcome Outcome) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(MetricEvaluationOutcome),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(DimOutcome),
						Value: aws.String(string(outcome)),
					},
					{
						Name:  aws.String(DimCity),
						Value: aws.String(m.city),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record outcome metric",
			"error", err.Error(),
			"outcome", string(outcome),
		)
	}
}

// RecordLatency emits the evaluation wall time in milliseconds with the City
// dimension.
func (m *CloudWatchEvaluationMetrics) RecordLatency(ctx context.Context, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(MetricEvaluationLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(DimCity),
						Value: aws.String(m.city),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record latency metric",
			"error", err.Error(),
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// Compile-time assertions.
var (
	_ EvaluationMetrics = (*CloudWatchEvaluationMetrics)(nil)
	_ EvaluationMetrics = NoopMetrics{}
)
