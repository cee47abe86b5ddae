package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

type fakeIoT struct {
	inputs []*iotdataplane.PublishInput
}

func (f *fakeIoT) Publish(_ context.Context, in *iotdataplane.PublishInput, _ ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &iotdataplane.PublishOutput{}, nil
}

func TestGatePublisher(t *testing.T) {
	client := &fakeIoT{}
	p := NewGatePublisher(client, "parking/gates")
	amount := decimal.RequireFromString("4")

	require.NoError(t, p.NotifySpotEvent(context.Background(), domain.SpotEvent{
		EventID: "e-1", Type: domain.SpotEventSettled, Gate: 2, PlateNumber: "ABC123", SpotID: "B1_1", Amount: &amount,
	}))
	require.NoError(t, p.NotifySpotEvent(context.Background(), domain.SpotEvent{Type: domain.SpotEventAdded, Gate: 1}))
	require.NoError(t, p.NotifySpotEvent(context.Background(), domain.SpotEvent{Type: domain.SpotEventRented}))

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "parking/gates/exit/2/command", aws.ToString(client.inputs[0].Topic))

	var cmd BarrierCommand
	require.NoError(t, json.Unmarshal(client.inputs[0].Payload, &cmd))
	assert.Equal(t, BarrierCommand{Command: "open", RequestID: "e-1", PlateNumber: "ABC123", SpotID: "B1_1", Amount: "4.00"}, cmd)
}

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type handlerFunc func(ctx context.Context, body string) error

func (f handlerFunc) HandleGateCommand(ctx context.Context, body string) error { return f(ctx, body) }

func TestSQSConsumer_DeletesHandledAndRejectedMessages(t *testing.T) {
	client := &fakeSQS{}
	results := map[string]error{
		"ok":        nil,
		"rejected":  fmt.Errorf("rent: %w", service.ErrAlreadyOccupied),
		"transient": errors.New("store unavailable"),
	}
	c := NewSQSConsumer(client, "https://sqs.example/gates", handlerFunc(func(_ context.Context, body string) error {
		return results[body]
	}))

	for _, body := range []string{"ok", "rejected", "transient"} {
		msg := types.Message{MessageId: aws.String(body), Body: aws.String(body), ReceiptHandle: aws.String("rh-" + body)}
		c.process(context.Background(), msg.MessageId, msg.Body, msg.ReceiptHandle)
	}
	c.process(context.Background(), aws.String("empty"), nil, aws.String("rh-empty"))

	assert.Equal(t, []string{"rh-ok", "rh-rejected", "rh-empty"}, client.deleted)
}

func TestSQSConsumer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewSQSConsumer(&fakeSQS{}, "q", handlerFunc(func(context.Context, string) error { return nil }))

	assert.NoError(t, c.Start(ctx))
}
