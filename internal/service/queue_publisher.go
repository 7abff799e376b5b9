// Package queue_publisher provides functions to publish audit events to
// RabbitMQ. Errors are logged and returned so callers can ignore failures
// without interrupting the request that triggered the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/venue-ordering/internal/queue"
)

// PublishSecurityEvent publishes a SecurityEvent to the audit.security
// queue. Publishing is best-effort: when no broker is configured it is a
// no-op (the service still logs sensitive actions locally), and any broker
// error is logged and returned without affecting the caller's request.
// Messages are marked persistent so the audit trail survives broker
// restarts.
func PublishSecurityEvent(ctx context.Context, event q.SecurityEvent) error {
	url := q.BrokerURL()
	if url == "" {
		return nil
	}
	if event.At == "" {
		event.At = time.Now().UTC().Format(time.RFC3339)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.SecurityQueueName, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.SecurityQueueName, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
