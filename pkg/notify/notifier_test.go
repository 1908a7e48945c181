package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/workflow"
)

type memoryOutbox struct {
	rows []model.NotificationEvent
	err  error
}

func (m *memoryOutbox) Insert(ctx context.Context, event *model.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *event)
	return nil
}

func (m *memoryOutbox) ListPending(ctx context.Context, limit int) ([]model.NotificationEvent, error) {
	return m.rows, nil
}

func (m *memoryOutbox) MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error {
	return nil
}

func (m *memoryOutbox) MarkFailed(ctx context.Context, eventID string) error {
	return nil
}

func TestNotifyEnqueuesOutboxRow(t *testing.T) {
	outbox := &memoryOutbox{}
	notifier := NewNotifier(outbox, nil, zap.NewNop())

	notifier.Notify(context.Background(), workflow.TransitionEvent{
		Type:         model.ActionContentApproved,
		SubmissionID: "sub-1",
		OrgID:        "org-1",
		State:        model.SubmissionApproved,
		Step:         2,
		Actor:        "bob",
	})

	if len(outbox.rows) != 1 {
		t.Fatalf("expected 1 outbox row, got %d", len(outbox.rows))
	}
	row := outbox.rows[0]
	if row.EventType != model.ActionContentApproved {
		t.Fatalf("expected event type content_approved, got %q", row.EventType)
	}
	if row.Status != model.OutboxStatusPending {
		t.Fatalf("expected pending status, got %q", row.Status)
	}
	if row.Payload["submission_id"] != "sub-1" || row.Payload["actor"] != "bob" {
		t.Fatalf("payload incomplete: %+v", row.Payload)
	}
}

func TestNotifySwallowsOutboxFailure(t *testing.T) {
	outbox := &memoryOutbox{err: errors.New("connection refused")}
	notifier := NewNotifier(outbox, nil, zap.NewNop())

	// must not panic or propagate; the transition already committed
	notifier.Notify(context.Background(), workflow.TransitionEvent{
		Type:         model.ActionContentSubmitted,
		SubmissionID: "sub-1",
	})
}

func TestNotifyDefinitionEnqueuesOutboxRow(t *testing.T) {
	outbox := &memoryOutbox{}
	notifier := NewNotifier(outbox, nil, zap.NewNop())

	notifier.NotifyDefinition(context.Background(), workflow.DefinitionEvent{
		Type:       model.ActionWorkflowDeleted,
		OrgID:      "org-1",
		WorkflowID: "wf-1",
		Actor:      "admin",
	})

	if len(outbox.rows) != 1 {
		t.Fatalf("expected 1 outbox row, got %d", len(outbox.rows))
	}
	row := outbox.rows[0]
	if row.EventType != model.ActionWorkflowDeleted {
		t.Fatalf("expected event type workflow_deleted, got %q", row.EventType)
	}
	if row.Payload["workflow_id"] != "wf-1" || row.Payload["actor"] != "admin" {
		t.Fatalf("payload incomplete: %+v", row.Payload)
	}
}
