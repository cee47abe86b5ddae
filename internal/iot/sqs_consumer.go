package iot

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"parking_rental/internal/service"
)

// SQSAPI is the part of the SQS client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// CommandHandler processes one gate command body.
type CommandHandler interface {
	HandleGateCommand(ctx context.Context, body string) error
}

type SQSConsumer struct {
	sqsClient  SQSAPI
	queueURL   string
	handler    CommandHandler
	retryDelay time.Duration
}

func NewSQSConsumer(client SQSAPI, queueURL string, handler CommandHandler) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:  client,
		queueURL:   queueURL,
		handler:    handler,
		retryDelay: 5 * time.Second,
	}
}

// Start long-polls the gate command queue until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) error {
	log.Printf("SQS Consumer: listening on %s", c.queueURL)
	for {
		if ctx.Err() != nil {
			log.Println("SQS Consumer: context cancelled, stopping.")
			return nil
		}

		result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   60,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("SQS Consumer: receive failed: %v", err)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, message := range result.Messages {
			c.process(ctx, message.MessageId, message.Body, message.ReceiptHandle)
		}
	}
}

// process deletes the message when it was handled or rejected for good.
// Anything else is left for redelivery after the visibility timeout.
func (c *SQSConsumer) process(ctx context.Context, id, body, receiptHandle *string) {
	if body == nil {
		log.Println("SQS Consumer: empty message body, deleting")
		c.deleteMessage(ctx, receiptHandle)
		return
	}

	err := c.handler.HandleGateCommand(ctx, *body)
	switch {
	case err == nil:
		c.deleteMessage(ctx, receiptHandle)
	case service.IsPermanent(err):
		log.Printf("SQS Consumer: rejected message %s: %v", aws.ToString(id), err)
		c.deleteMessage(ctx, receiptHandle)
	default:
		log.Printf("SQS Consumer: message %s failed, will be redelivered: %v", aws.ToString(id), err)
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: missing receipt handle, cannot delete message")
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: delete failed: %v", err)
	}
}
