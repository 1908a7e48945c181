package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/eventbus"
	"github.com/stagegate/stagegate/pkg/metrics"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
	"github.com/stagegate/stagegate/pkg/workflow"
)

// Notifier fans committed transitions out to external consumers: a durable
// outbox row for the broker relay and a realtime redis event for anything
// listening live. Both legs are fire-and-forget; the transition already
// committed and must not fail retroactively.
type Notifier struct {
	outbox store.OutboxStore
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewNotifier(outbox store.OutboxStore, bus *eventbus.Bus, logger *zap.Logger) *Notifier {
	return &Notifier{outbox: outbox, bus: bus, logger: logger}
}

var _ workflow.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, event workflow.TransitionEvent) {
	if n.outbox != nil {
		row := &model.NotificationEvent{
			EventType: event.Type,
			Payload: model.JSONB{
				"submission_id": event.SubmissionID,
				"workflow_id":   event.WorkflowID,
				"org_id":        event.OrgID,
				"state":         string(event.State),
				"step":          event.Step,
				"actor":         event.Actor,
			},
			Status: model.OutboxStatusPending,
		}
		if err := n.outbox.Insert(ctx, row); err != nil {
			metrics.NotifyFailures.Inc()
			n.logger.Error("failed to enqueue notification event",
				zap.String("type", event.Type),
				zap.String("submission_id", event.SubmissionID),
				zap.Error(err),
			)
		}
	}

	if n.bus != nil {
		payload := eventbus.SubmissionEvent{
			SubmissionID: event.SubmissionID,
			WorkflowID:   event.WorkflowID,
			OrgID:        event.OrgID,
			State:        string(event.State),
			Step:         event.Step,
			Actor:        event.Actor,
		}
		n.publish(ctx, eventbus.ChannelSubmission, event.Type, payload)
	}
}

// NotifyDefinition fans a workflow definition lifecycle change out on the
// same two legs as submission transitions.
func (n *Notifier) NotifyDefinition(ctx context.Context, event workflow.DefinitionEvent) {
	if n.outbox != nil {
		row := &model.NotificationEvent{
			EventType: event.Type,
			Payload: model.JSONB{
				"workflow_id": event.WorkflowID,
				"org_id":      event.OrgID,
				"actor":       event.Actor,
			},
			Status: model.OutboxStatusPending,
		}
		if err := n.outbox.Insert(ctx, row); err != nil {
			metrics.NotifyFailures.Inc()
			n.logger.Error("failed to enqueue notification event",
				zap.String("type", event.Type),
				zap.String("workflow_id", event.WorkflowID),
				zap.Error(err),
			)
		}
	}

	if n.bus != nil {
		payload := eventbus.WorkflowEvent{
			WorkflowID: event.WorkflowID,
			OrgID:      event.OrgID,
			Action:     event.Type,
		}
		n.publish(ctx, eventbus.ChannelWorkflow, event.Type, payload)
	}
}

func (n *Notifier) publish(ctx context.Context, channel, eventType string, payload interface{}) {
	busEvent, err := eventbus.NewEvent(eventType, payload)
	if err == nil {
		err = n.bus.Publish(ctx, channel, busEvent)
	}
	if err != nil {
		metrics.NotifyFailures.Inc()
		n.logger.Warn("failed to publish realtime event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
