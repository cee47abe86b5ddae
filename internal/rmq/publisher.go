package rmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"parking_rental/internal/domain"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher forwards spot events to the exchange with routing key
// "spot.<event>.<floor>", e.g. "spot.settled.B1".
type EventPublisher struct {
	mu       sync.Mutex
	channel  channelPublisher
	exchange string
}

func NewEventPublisher(c *Client) *EventPublisher {
	return &EventPublisher{channel: c.Channel, exchange: c.Exchange}
}

func RoutingKey(event domain.SpotEvent) string {
	name := strings.TrimPrefix(string(event.Type), "spot_")
	return fmt.Sprintf("spot.%s.%s", name, event.Floor)
}

func (p *EventPublisher) NotifySpotEvent(ctx context.Context, event domain.SpotEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal spot event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKey(event),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Timestamp:    event.Timestamp,
			Type:         string(event.Type),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}
