// Package rabbitmq carries inference jobs from the API process to the
// worker. The payload is a pointer plus routing metadata; the job row
// in the database stays the source of truth.
package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/virelio/ai-workspace/internal/workspace"
)

const publishTimeout = 5 * time.Second

// JobMessage is the wire payload. ConversationID and ModelID ride along
// for log lines only; the worker loads the job row by id.
type JobMessage struct {
	JobID          string `json:"job_id"`
	ConversationID string `json:"conversation_id"`
	ModelID        string `json:"model_id"`
}

// RetryQueue and DLQQueue derive the companion queue names from the
// work queue: expired retries dead-letter back to the work queue, and
// rejected deliveries land in the DLQ for inspection.
func RetryQueue(queue string) string { return queue + ".retry" }
func DLQQueue(queue string) string   { return queue + ".dlq" }

// DeclareTopology declares the work/retry/DLQ queue trio. Publisher and
// worker both call it so the two sides never disagree on queue
// arguments, which RabbitMQ treats as a declaration conflict.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	declare := func(name string, args amqp.Table) error {
		_, err := ch.QueueDeclare(name, true, false, false, false, args)
		return err
	}

	if err := declare(DLQQueue(queue), nil); err != nil {
		return err
	}
	if err := declare(RetryQueue(queue), amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return err
	}
	return declare(queue, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQQueue(queue),
	})
}

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishJob enqueues one job on the work queue as a persistent
// delivery.
func (p *Publisher) PublishJob(ctx context.Context, job *workspace.Job) error {
	body, err := json.Marshal(JobMessage{
		JobID:          job.ID,
		ConversationID: job.ConversationID,
		ModelID:        job.ModelID,
	})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
