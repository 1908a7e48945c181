package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope carried on every channel.
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SubmissionEvent describes a committed submission transition for realtime
// consumers (notification workers, dashboards).
type SubmissionEvent struct {
	SubmissionID string `json:"submission_id"`
	WorkflowID   string `json:"workflow_id"`
	OrgID        string `json:"org_id"`
	State        string `json:"state"`
	Step         int    `json:"step"`
	Actor        string `json:"actor"`
}

// WorkflowEvent describes a definition lifecycle change.
type WorkflowEvent struct {
	WorkflowID string `json:"workflow_id"`
	OrgID      string `json:"org_id"`
	Action     string `json:"action"`
}

const (
	ChannelSubmission = "sg:events:submission"
	ChannelWorkflow   = "sg:events:workflow"
)

type Bus struct {
	client redis.UniversalClient
}

func NewBus(client redis.UniversalClient) *Bus {
	return &Bus{client: client}
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}
