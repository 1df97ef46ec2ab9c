package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"stormsignal/internal/types"
)

// SNSAPI defines the subset of the SNS client used by SNSNotifier.
// Extracted for testability — tests can provide a mock implementation.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier implements types.Notifier using AWS SNS topic publish.
// Authentication is handled via IAM roles (no API key required). The AWS SDK
// owns transport concerns, so no BaseClient wrapper is needed.
type SNSNotifier struct {
	api    SNSAPI
	logger *slog.Logger
}

// NewSNSNotifier creates a new SNSNotifier from an AWS config.
func NewSNSNotifier(awsCfg aws.Config, logger *slog.Logger) *SNSNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &SNSNotifier{
		api:    sns.NewFromConfig(awsCfg),
		logger: logger,
	}
}

// NewSNSNotifierWithAPI creates an SNSNotifier with a pre-configured SNSAPI.
// Useful for testing with a mock SNS interface.
func NewSNSNotifierWithAPI(api SNSAPI, logger *slog.Logger) *SNSNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &SNSNotifier{
		api:    api,
		logger: logger,
	}
}

// Publish sends the subject and message to the given topic ARN and returns
// the SNS-assigned message ID. The topic fans out to its subscribers (email,
// SMS); delivery beyond the Publish call is SNS's responsibility.
//
// Error mapping:
//   - NotFoundException / InvalidParameterException → notify_target_invalid
//   - AuthorizationErrorException → notify_unauthorized
//   - ThrottledException → notify_throttled
//   - Other → notify_publish_failed
func (n *SNSNotifier) Publish(ctx context.Context, target, subject, message string) (string, error) {
	if target == "" {
		return "", types.NewAppError(
			types.ErrCodeNotifyTargetInvalid,
			"notification target ARN is empty",
			nil,
		)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(target),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := n.api.Publish(ctx, input)
	if err != nil {
		return "", mapSNSError(err)
	}

	msgID := aws.ToString(result.MessageId)

	n.logger.InfoContext(ctx, "published notification",
		"target", target,
		"subject", subject,
		"message_id", msgID,
	)

	return msgID, nil
}

// mapSNSError translates AWS SNS errors into domain AppErrors.
func mapSNSError(err error) error {
	var notFound *snstypes.NotFoundException
	if errors.As(err, &notFound) {
		return types.NewAppError(
			types.ErrCodeNotifyTargetInvalid,
			fmt.Sprintf("SNS topic does not exist: %v", err),
			err,
		)
	}

	var invalidParam *snstypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return types.NewAppError(
			types.ErrCodeNotifyTargetInvalid,
			fmt.Sprintf("SNS rejected publish parameters: %v", err),
			err,
		)
	}

	var authErr *snstypes.AuthorizationErrorException
	if errors.As(err, &authErr) {
		return types.NewAppError(
			types.ErrCodeNotifyUnauthorized,
			fmt.Sprintf("not authorized to publish to SNS topic: %v", err),
			err,
		)
	}

	var throttled *snstypes.ThrottledException
	if errors.As(err, &throttled) {
		return types.NewAppError(
			types.ErrCodeNotifyThrottled,
			fmt.Sprintf("SNS publish throttled: %v", err),
			err,
		)
	}

	return types.NewAppError(
		types.ErrCodeNotifyPublishFailed,
		fmt.Sprintf("SNS publish failed: %v", err),
		err,
	)
}

// Compile-time assertion that SNSNotifier satisfies Notifier.
var _ types.Notifier = (*SNSNotifier)(nil)
