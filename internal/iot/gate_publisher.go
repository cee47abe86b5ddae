package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"

	"parking_rental/internal/domain"
)

// IoTPublishAPI is the part of the IoT data plane client used to reach gates.
type IoTPublishAPI interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// BarrierCommand is sent to a gate controller over MQTT.
type BarrierCommand struct {
	Command     string `json:"command"`
	RequestID   string `json:"request_id"`
	PlateNumber string `json:"plate_number,omitempty"`
	SpotID      string `json:"spot_id,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

// GatePublisher opens the entrance barrier when a spot is rented and the
// exit barrier when a rental is settled.
type GatePublisher struct {
	client      IoTPublishAPI
	topicPrefix string
}

func NewGatePublisher(client IoTPublishAPI, topicPrefix string) *GatePublisher {
	return &GatePublisher{client: client, topicPrefix: topicPrefix}
}

func (p *GatePublisher) NotifySpotEvent(ctx context.Context, event domain.SpotEvent) error {
	var direction string
	switch event.Type {
	case domain.SpotEventRented:
		direction = "entrance"
	case domain.SpotEventSettled:
		direction = "exit"
	default:
		return nil
	}
	if event.Gate <= 0 {
		return nil
	}

	cmd := BarrierCommand{
		Command:     "open",
		RequestID:   event.EventID,
		PlateNumber: event.PlateNumber,
		SpotID:      event.SpotID,
	}
	if event.Amount != nil {
		cmd.Amount = event.Amount.StringFixed(2)
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal barrier command: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%d/command", p.topicPrefix, direction, event.Gate)
	_, err = p.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publish barrier command to %s: %w", topic, err)
	}
	log.Printf("GatePublisher: opened %s gate %d for %s", direction, event.Gate, event.PlateNumber)
	return nil
}
