package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/webapi/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewEvent(domain.Outcome{RequestID: "create-user", Success: true, StatusCode: 201})
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["request_id"]
	if !ok || aws.ToString(attr.StringValue) != "create-user" {
		t.Fatalf("request_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if got := aws.ToString(client.input.MessageAttributes["success"].StringValue); got != "true" {
		t.Fatalf("success attribute = %q", got)
	}
	if got := aws.ToString(client.input.MessageAttributes["event_id"].StringValue); got != evt.ID {
		t.Fatalf("event_id attribute = %q, want %q", got, evt.ID)
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"request_id":"create-user"`) {
		t.Fatalf("MessageBody missing request_id: %s", body)
	}
}

func TestSQSPublisherPublishError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), NewEvent(domain.Outcome{RequestID: "r"})); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestNewSQSPublisherRequiresConfig(t *testing.T) {
	if _, err := newSQSPublisher(context.Background(), PublisherConfig{ID: "q", Type: TypeSQS}, nil); err == nil {
		t.Fatalf("expected error for missing sqs block")
	}
}

func TestNewSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "q",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL:       "https://sqs.us-east-1.amazonaws.com/123/queue",
			Region:         "us-east-1",
			AWSCredentials: AWSCredentials{AccessKeyID: "AKID", SecretAccessKey: "secret"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "q" {
		t.Fatalf("unexpected publisher identity %s/%s", pub.Type(), pub.ID())
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
