package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of background work scheduled alongside the browser
// flow (record persistence, telemetry writes, screenshot encodes).
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue runs tasks on a bounded worker pool so slow disk or network
// work never stalls page interaction.
type TaskQueue struct {
	tasks  chan Task
	group  *errgroup.Group
	ctx    context.Context
	logger *slog.Logger
}

// NewTaskQueue starts workers goroutines consuming the queue.
func NewTaskQueue(ctx context.Context, workers, buffer int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 2
	}

	g, gctx := errgroup.WithContext(ctx)
	q := &TaskQueue{
		tasks:  make(chan Task, buffer),
		group:  g,
		ctx:    gctx,
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case task, ok := <-q.tasks:
					if !ok {
						return nil
					}
					if err := task.Run(gctx); err != nil {
						q.logger.Error("background task failed", "task", task.Name, "error", err)
						return fmt.Errorf("task %s: %w", task.Name, err)
					}
					q.logger.Debug("background task done", "task", task.Name)
				}
			}
		})
	}
	return q
}

// Submit enqueues a task, blocking when the buffer is full. Returns an
// error once the queue has shut down.
func (q *TaskQueue) Submit(task Task) error {
	select {
	case <-q.ctx.Done():
		return fmt.Errorf("task queue closed: %w", q.ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for in-flight work. The first
// task error, if any, is returned.
func (q *TaskQueue) Close() error {
	close(q.tasks)
	return q.group.Wait()
}
