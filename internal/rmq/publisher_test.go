package rmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_rental/internal/domain"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestEventPublisher_NotifySpotEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := &EventPublisher{channel: ch, exchange: "parking.events"}
	amount := decimal.RequireFromString("4.0")
	event := domain.SpotEvent{
		EventID:     "e-1",
		Type:        domain.SpotEventSettled,
		Timestamp:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Floor:       "B1",
		SpotID:      "B1_1",
		Status:      domain.SpotAvailable,
		PlateNumber: "ABC123",
		Amount:      &amount,
	}

	require.NoError(t, p.NotifySpotEvent(context.Background(), event))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, "parking.events", ch.sent[0].exchange)
	assert.Equal(t, "spot.settled.B1", ch.sent[0].key)
	assert.Equal(t, "e-1", ch.sent[0].msg.MessageId)

	var decoded domain.SpotEvent
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &decoded))
	assert.Equal(t, "ABC123", decoded.PlateNumber)
	require.NotNil(t, decoded.Amount)
	assert.True(t, amount.Equal(*decoded.Amount))
}

func TestEventPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &EventPublisher{channel: &fakeChannel{err: boom}, exchange: "parking.events"}

	err := p.NotifySpotEvent(context.Background(), domain.SpotEvent{Type: domain.SpotEventRented})
	assert.ErrorIs(t, err, boom)
}
