package notification

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	dErrors "jassari/pkg/domain-errors"
)

// Exchange is the topic exchange notification events are published to. The
// email worker binds queues per template routing key.
const Exchange = "youth_membership.notifications"

// AMQPSender publishes notification events to RabbitMQ in confirm mode, so a
// broker-rejected publish surfaces as an error and aborts the enclosing
// membership transaction.
type AMQPSender struct {
	ch *amqp.Channel
}

// NewAMQPSender declares the exchange and puts the channel in confirm mode.
func NewAMQPSender(conn *amqp.Connection) (*AMQPSender, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &AMQPSender{ch: ch}, nil
}

func (s *AMQPSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	confirmation, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, Exchange, string(msg.Template), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "publish notification")
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "confirm notification publish")
	}
	if !acked {
		return dErrors.New(dErrors.CodeUnavailable, "notification publish nacked by broker")
	}
	return nil
}

// Close releases the channel.
func (s *AMQPSender) Close() error {
	return s.ch.Close()
}
