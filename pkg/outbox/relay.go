package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/metrics"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
)

// Relay drains pending notification events to the broker so downstream
// notification and reporting consumers see every transition, even ones that
// happened while they were down. Undeliverable events go to the DLQ topic.
type Relay struct {
	repo         store.OutboxStore
	writer       *kafka.Writer
	dlqWriter    *kafka.Writer
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int
}

type Message struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   model.JSONB `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

type DLQMessage struct {
	Event    Message   `json:"event"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

func NewRelay(repo store.OutboxStore, writer, dlqWriter *kafka.Writer, logger *zap.Logger, pollInterval time.Duration, batchSize int) *Relay {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		repo:         repo,
		writer:       writer,
		dlqWriter:    dlqWriter,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("notification relay starting",
		zap.Duration("poll_interval", r.pollInterval),
		zap.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.processPending(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("notification relay shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.processPending(ctx)
		}
	}
}

func (r *Relay) processPending(ctx context.Context) {
	events, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		r.logger.Warn("failed to list pending notification events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := r.publishEvent(ctx, event); err != nil {
			r.logger.Warn("failed to relay notification event",
				zap.Error(err),
				zap.String("event_id", event.EventID.String()),
			)
		}
	}
}

func (r *Relay) publishEvent(ctx context.Context, event model.NotificationEvent) error {
	message := Message{
		EventID:   event.EventID.String(),
		EventType: event.EventType,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.EventID.String()),
		Value: payload,
		Time:  time.Now(),
	}

	if err := r.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		r.logger.Warn("failed to publish to broker, sending to DLQ",
			zap.Error(err),
			zap.String("event_id", event.EventID.String()),
		)
		return r.publishDLQ(ctx, message, err)
	}

	if err := r.repo.MarkPublished(ctx, event.EventID.String(), time.Now()); err != nil {
		r.logger.Warn("failed to mark event published",
			zap.Error(err),
			zap.String("event_id", event.EventID.String()),
		)
		return err
	}

	metrics.OutboxPublished.Inc()
	return nil
}

func (r *Relay) publishDLQ(ctx context.Context, message Message, publishErr error) error {
	dlq := DLQMessage{
		Event:    message,
		Error:    publishErr.Error(),
		FailedAt: time.Now(),
	}

	payload, err := json.Marshal(dlq)
	if err != nil {
		return err
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(message.EventID),
		Value: payload,
		Time:  time.Now(),
	}

	if err := r.dlqWriter.WriteMessages(ctx, kafkaMessage); err != nil {
		return err
	}

	if err := r.repo.MarkFailed(ctx, message.EventID); err != nil {
		r.logger.Warn("failed to mark event failed",
			zap.Error(err),
			zap.String("event_id", message.EventID),
		)
		return err
	}

	metrics.OutboxFailed.Inc()
	return nil
}
