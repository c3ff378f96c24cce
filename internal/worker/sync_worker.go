package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/log"
)

// Mirrorer pushes a full snapshot of the ledger to its sinks.
type Mirrorer interface {
	Run(ctx context.Context) (int, error)
}

// SyncWorker keeps the mirror sinks in step with the primary table. Each
// change message triggers one full mirror; messages published before the
// last successful mirror started are already covered and are skipped.
type SyncWorker struct {
	mirror Mirrorer
	logger *log.Logger
	now    func() time.Time

	mu         sync.Mutex
	lastMirror time.Time
}

func NewSyncWorker(mirror Mirrorer, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.Config{Output: io.Discard})
	}
	return &SyncWorker{
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleChange processes a single change message from AMQP.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		log.FieldOperation, msg.Operation,
		log.FieldIndex, msg.Index,
		"timestamp", msg.Timestamp)

	if w.covered(msg) {
		w.logger.DebugContext(ctx, "Change already mirrored, skipping",
			log.FieldOperation, msg.Operation)
		return nil
	}
	return w.sync(ctx)
}

// StartupSyncCheck mirrors once so changes made while the worker was down
// reach the sinks.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Running startup mirror")
	return w.sync(ctx)
}

// PeriodicSync mirrors every interval until ctx is done. It backs up the
// message path in case events are lost.
func (w *SyncWorker) PeriodicSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic mirror failed", log.FieldError, err)
			}
		}
	}
}

func (w *SyncWorker) sync(ctx context.Context) error {
	started := w.now()
	rows, err := w.mirror.Run(ctx)
	if err != nil {
		return fmt.Errorf("mirror ledger: %w", err)
	}

	w.mu.Lock()
	if started.After(w.lastMirror) {
		w.lastMirror = started
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Successfully mirrored ledger", log.FieldRows, rows)
	return nil
}

func (w *SyncWorker) covered(msg *amqp.ChangeMessage) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastMirror.IsZero() {
		return false
	}
	return msg.Timestamp.Before(w.lastMirror)
}
