package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"scamshield/internal/models"
)

func TestWriterPersistsQueuedOps(t *testing.T) {
	det := newFakeDetections()
	training := newFakeTraining()
	w := NewRecordWriter(det, training, 8, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Enqueue(&models.DetectionRecord{RequestID: "req-1"}, &models.TrainingExample{RequestID: "req-1", Label: "loan"})
	w.Enqueue(&models.DetectionRecord{RequestID: "req-2"}, nil)

	// Give the writer a moment, then stop and wait for the drain.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Len(t, det.records, 2)
	assert.Len(t, training.examples, 1)
}

func TestWriterDropsWhenQueueFull(t *testing.T) {
	// Writer not running: the buffer fills and further enqueues drop
	// instead of blocking the decision path.
	w := NewRecordWriter(newFakeDetections(), newFakeTraining(), 1, zap.NewNop())

	w.Enqueue(&models.DetectionRecord{RequestID: "req-1"}, nil)

	finished := make(chan struct{})
	go func() {
		w.Enqueue(&models.DetectionRecord{RequestID: "req-2"}, nil)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
