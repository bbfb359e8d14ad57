package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"sms-dispatch/internal/core/port"
)

// dispatchQueueName is the durable queue carrying dispatch jobs.
const dispatchQueueName = "mailing.dispatch"

// maxRequeues bounds how often a failed job is put back on the queue
// before it is dropped.
const maxRequeues = 3

// AMQPQueue implements port.DispatchQueue on a RabbitMQ broker. Jobs are
// JSON bodies on a durable queue with manual acks; a handler failure
// requeues the job with an incremented x-retry-count header until
// maxRequeues is reached.
type AMQPQueue struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

// NewAMQPQueue dials the broker and declares the dispatch queue.
func NewAMQPQueue(url string, logger *slog.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if _, err = ch.QueueDeclare(dispatchQueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, logger: logger}, nil
}

// Publish enqueues a dispatch job.
func (q *AMQPQueue) Publish(_ context.Context, job port.DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish("", dispatchQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume delivers jobs to handler until ctx is cancelled.
func (q *AMQPQueue) Consume(ctx context.Context, handler func(ctx context.Context, job port.DispatchJob) error) error {
	msgs, err := q.ch.Consume(dispatchQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("amqp deliveries channel closed")
			}
			var job port.DispatchJob
			if err = json.Unmarshal(d.Body, &job); err != nil {
				q.logger.Error("drop malformed dispatch job", slog.Any("error", err))
				_ = d.Ack(false)
				continue
			}
			if err = handler(ctx, job); err != nil {
				q.retry(d, job, err)
			}
			_ = d.Ack(false)
		}
	}
}

// retry republishes a failed job with an incremented x-retry-count
// header. A plain Nack requeue would never advance the counter, so the
// bound could not take effect.
func (q *AMQPQueue) retry(d amqp.Delivery, job port.DispatchJob, cause error) {
	retries, _ := d.Headers["x-retry-count"].(int32)
	if int(retries) >= maxRequeues {
		q.logger.Error("dispatch job dropped after retries",
			slog.Int64("mailing_id", job.MailingID), slog.Any("error", cause))
		return
	}
	q.logger.Warn("requeue dispatch job",
		slog.Int64("mailing_id", job.MailingID),
		slog.Int("retries", int(retries)), slog.Any("error", cause))
	err := q.ch.Publish("", dispatchQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": retries + 1},
		Body:         d.Body,
	})
	if err != nil {
		q.logger.Error("requeue dispatch job",
			slog.Int64("mailing_id", job.MailingID), slog.Any("error", err))
	}
}

// Close releases the channel and connection.
func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
