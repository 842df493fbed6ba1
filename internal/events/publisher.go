// Package events publishes checkout outcomes to Kafka so downstream services
// (notifications, reconciliation of discarded late results) can follow them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/checkout"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOutcomeCommitted    = "checkout.outcome.committed"
	TypeLateResultDiscarded = "checkout.late_result.discarded"
)

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON payload of every message. The key is the attempt ID.
type Event struct {
	Type       string    `json:"type"`
	AttemptID  string    `json:"attemptId"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	OwnerID    string    `json:"ownerId,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	Error      string    `json:"error,omitempty"`
	ElapsedMS  int64     `json:"elapsedMs"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewWriter builds an async writer for the comma separated broker list.
func NewWriter(brokersCSV, topic string) *kafka.Writer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
}

// Publisher implements checkout.Observer.
type Publisher struct {
	writer  Writer
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(writer Writer, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		logger:  logger.With("component", "events"),
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

func (p *Publisher) OutcomeCommitted(outcome domain.OrderOutcome, elapsed time.Duration) {
	p.publish(Event{
		Type:       TypeOutcomeCommitted,
		AttemptID:  outcome.AttemptID.String(),
		Kind:       string(outcome.Kind),
		Message:    outcome.Message,
		ElapsedMS:  elapsed.Milliseconds(),
		OccurredAt: p.now().UTC(),
	})
}

func (p *Publisher) LateResultDiscarded(result checkout.LateResult) {
	event := Event{
		Type:       TypeLateResultDiscarded,
		AttemptID:  result.Committed.AttemptID.String(),
		Kind:       string(domain.OutcomeSuccess),
		Message:    checkout.SuccessMessage(result.Response.Body),
		OwnerID:    result.OwnerID,
		StatusCode: result.Response.StatusCode,
		ElapsedMS:  result.Elapsed.Milliseconds(),
		OccurredAt: p.now().UTC(),
	}
	if result.Err != nil {
		event.Kind = string(domain.OutcomeFailure)
		event.Message = checkout.FailureMessage(result.Err)
		event.Error = result.Err.Error()
	}

	p.publish(event)
}

func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("writer.Close: %w", err)
	}
	return nil
}

func (p *Publisher) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AttemptID),
		Value: data,
		Time:  event.OccurredAt,
	})
	if err != nil {
		p.logger.Error("failed to publish event", "type", event.Type, "attempt", event.AttemptID, "error", err)
	}
}
