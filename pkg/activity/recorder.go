package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/metrics"
	"github.com/stagegate/stagegate/pkg/model"
	"github.com/stagegate/stagegate/pkg/store"
	"github.com/stagegate/stagegate/pkg/workflow"
)

// Recorder writes audit entries and swallows failures: an audit write must
// never roll back or block the state transition it describes. Failures are
// counted and logged instead.
type Recorder struct {
	store  store.ActivityStore
	logger *zap.Logger
}

func NewRecorder(store store.ActivityStore, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

var _ workflow.ActivityLog = (*Recorder)(nil)

func (r *Recorder) Record(ctx context.Context, entry model.ActivityEntry) {
	if err := r.store.Insert(ctx, &entry); err != nil {
		metrics.ActivityLogFailures.Inc()
		r.logger.Error("failed to write activity entry",
			zap.String("action", entry.Action),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}
