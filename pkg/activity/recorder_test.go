package activity

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/model"
)

type failingStore struct {
	calls int
}

func (s *failingStore) Insert(ctx context.Context, entry *model.ActivityEntry) error {
	s.calls++
	return errors.New("connection refused")
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	sink := &failingStore{}
	recorder := NewRecorder(sink, zap.NewNop())

	recorder.Record(context.Background(), model.ActivityEntry{
		UserID: "alice",
		Action: model.ActionContentSubmitted,
	})

	if sink.calls != 1 {
		t.Fatalf("expected 1 insert attempt, got %d", sink.calls)
	}
}
