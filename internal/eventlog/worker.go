// Package eventlog writes the activity audit log asynchronously.
//
// The log is append-only: entries record what happened to an activity
// (expenses added, splits adjusted, members joining and leaving,
// settlement) and are never updated or deleted. Writes go through a
// buffered channel so request handling never blocks on the log; a full
// buffer drops the entry with a warning rather than stalling the caller.
package eventlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/weichenh/splitledger/internal/models"
)

// Sink persists log entries. storage.Store satisfies it.
type Sink interface {
	AppendEvent(ctx context.Context, evt *models.ActivityEvent) error
}

// Worker drains queued entries into the sink on its own goroutine.
type Worker struct {
	eventCh chan *models.ActivityEvent
	sink    Sink
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorker creates a worker with the given queue capacity.
func NewWorker(sink Sink, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan *models.ActivityEvent, bufferSize),
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the drain goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("draining activity log before shutdown", "remaining", len(w.eventCh))
				for len(w.eventCh) > 0 {
					evt := <-w.eventCh
					if err := w.sink.AppendEvent(context.Background(), evt); err != nil {
						slog.Error("failed to save activity event during shutdown", "error", err, "action", evt.Action)
					}
				}
				return
			case evt := <-w.eventCh:
				if err := w.sink.AppendEvent(w.ctx, evt); err != nil {
					slog.Error("failed to save activity event", "error", err, "action", evt.Action)
				}
			}
		}
	}()
}

// Record queues one entry without blocking. Entries are dropped, with a
// warning, when the queue is full.
func (w *Worker) Record(activityID string, action models.ActionType, operatorID, description string) {
	evt := &models.ActivityEvent{
		ActivityID:  activityID,
		Action:      action,
		Description: description,
		OperatorID:  operatorID,
		CreatedAt:   time.Now().Unix(),
	}
	select {
	case w.eventCh <- evt:
	default:
		slog.Warn("activity log queue full, dropping event", "action", action, "activity_id", activityID)
	}
}

// Shutdown stops the worker after draining queued entries. The channel is
// deliberately left open: a Record racing past shutdown must not panic,
// its entry is simply never delivered.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
