package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"medtransport/internal/common/logger"
	"medtransport/internal/common/mq"
)

// Client publishes events on a durable topic exchange.
type Client struct {
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func NewClient(rmq *mq.RabbitMQ, exchange string) (*Client, error) {
	c := &Client{
		ch:       rmq.Chan,
		exchange: exchange,
		log:      logger.New("events"),
	}
	if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return c, nil
}

func (c *Client) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = c.ch.PublishWithContext(ctx, c.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		c.log.Error().Str("routing_key", routingKey).Err(err).Msg("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}
	c.log.Debug().Str("routing_key", routingKey).Msg("event published")
	return nil
}

func (c *Client) PublishStatusChanged(ctx context.Context, msg ReportStatusChanged) error {
	return c.publish(ctx, fmt.Sprintf("report.status.%s", msg.Status), msg)
}

func (c *Client) PublishLocationRecorded(ctx context.Context, msg LocationRecorded) error {
	return c.publish(ctx, "driver.location.recorded", msg)
}
