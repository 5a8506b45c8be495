package queue

import (
	"context"

	"go.uber.org/zap"
)

// HandlerFunc processes one job. Handlers own their failure semantics: a
// stage that cannot proceed marks its artifact failed and returns the error
// for logging. The worker never retries.
type HandlerFunc func(ctx context.Context, job Job) error

// Worker dequeues jobs and dispatches them to registered stage handlers.
type Worker struct {
	queue    Queue
	handlers map[Stage]HandlerFunc
}

// NewWorker creates a worker reading from the given queue.
func NewWorker(q Queue) *Worker {
	return &Worker{
		queue:    q,
		handlers: make(map[Stage]HandlerFunc),
	}
}

// Register installs the handler for a stage. Last registration wins.
func (w *Worker) Register(stage Stage, h HandlerFunc) {
	w.handlers[stage] = h
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			zap.L().Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		w.dispatch(ctx, *job)
	}
}

func (w *Worker) dispatch(ctx context.Context, job Job) {
	logger := zap.L().With(
		zap.String("stage", string(job.Stage)),
		zap.String("artifact_id", job.ArtifactID),
	)

	handler, ok := w.handlers[job.Stage]
	if !ok {
		logger.Error("no handler registered for stage")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage handler panicked", zap.Any("panic", r))
		}
	}()

	if err := handler(ctx, job); err != nil {
		logger.Error("stage failed", zap.Error(err))
		return
	}
	logger.Info("stage completed")
}
