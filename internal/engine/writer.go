package engine

import (
	"context"

	"go.uber.org/zap"

	"scamshield/internal/metrics"
	"scamshield/internal/models"
	"scamshield/internal/repository"
)

type writeOp struct {
	record  *models.DetectionRecord
	example *models.TrainingExample
}

// RecordWriter is the bounded outbox behind the decision path. Writes are
// best-effort: a full queue or a failed insert is counted and logged, never
// surfaced to the caller.
type RecordWriter struct {
	detections repository.DetectionRepository
	training   repository.TrainingRepository
	ops        chan writeOp
	logger     *zap.Logger
}

// NewRecordWriter creates a writer with the given queue depth.
func NewRecordWriter(detections repository.DetectionRepository, training repository.TrainingRepository, buffer int, logger *zap.Logger) *RecordWriter {
	if buffer <= 0 {
		buffer = 256
	}
	return &RecordWriter{
		detections: detections,
		training:   training,
		ops:        make(chan writeOp, buffer),
		logger:     logger,
	}
}

// Enqueue queues a record (and optional training example) for persistence
// without blocking the decision path.
func (w *RecordWriter) Enqueue(rec *models.DetectionRecord, ex *models.TrainingExample) {
	select {
	case w.ops <- writeOp{record: rec, example: ex}:
	default:
		metrics.PersistFailures.Inc()
		w.logger.Warn("Record writer queue full, dropping write",
			zap.String("request_id", rec.RequestID))
	}
}

// Run drains the queue until the context is cancelled, then flushes what is
// already queued before returning.
func (w *RecordWriter) Run(ctx context.Context) {
	w.logger.Info("Record writer started.")
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case op := <-w.ops:
					w.write(op)
				default:
					w.logger.Info("Record writer stopped.")
					return
				}
			}
		case op := <-w.ops:
			w.write(op)
		}
	}
}

func (w *RecordWriter) write(op writeOp) {
	if err := w.detections.SaveRecord(op.record); err != nil {
		metrics.PersistFailures.Inc()
		w.logger.Error("Failed to save detection record",
			zap.String("request_id", op.record.RequestID),
			zap.Error(err))
		return
	}
	if op.example == nil {
		return
	}
	if err := w.training.SaveExample(op.example); err != nil {
		metrics.PersistFailures.Inc()
		w.logger.Error("Failed to save training example",
			zap.String("request_id", op.example.RequestID),
			zap.Error(err))
	}
}
