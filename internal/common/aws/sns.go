// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EventPublisher publishes JSON events to one SNS topic. The event type is
// sent as the eventType message attribute for subscription filters.
type EventPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewEventPublisher(client SNSAPI, topicARN string) *EventPublisher {
	return &EventPublisher{client: client, topicARN: topicARN}
}

func NewSNSPublisher(cfg awssdk.Config, topicARN string) *EventPublisher {
	return NewEventPublisher(sns.NewFromConfig(cfg), topicARN)
}

// Publish sends payload as JSON and returns the SNS message id.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: awssdk.String("String"), StringValue: awssdk.String(eventType)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return awssdk.ToString(out.MessageId), nil
}
