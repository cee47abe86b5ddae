package rmq

import (
	"fmt"
	"log"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const dialAttempts = 5

type Client struct {
	Conn     *amqp.Connection
	Channel  *amqp.Channel
	Exchange string
}

// NewClient dials RabbitMQ with exponential backoff and declares the topic
// exchange spot events are published to.
func NewClient(rmqURL, exchange string) (*Client, error) {
	var conn *amqp.Connection
	var err error
	for i := 1; i <= dialAttempts; i++ {
		conn, err = amqp.Dial(rmqURL)
		if err == nil {
			break
		}
		log.Printf("RabbitMQ: connect attempt %d failed: %v", i, err)
		if i < dialAttempts {
			time.Sleep(time.Second * time.Duration(math.Pow(2, float64(i))))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	log.Printf("RabbitMQ: connected, publishing to exchange %s", exchange)

	return &Client{Conn: conn, Channel: ch, Exchange: exchange}, nil
}

func (c *Client) Close() error {
	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	log.Println("RabbitMQ: connection closed")
	return nil
}
