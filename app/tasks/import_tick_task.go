package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelichko/syncpress/app/imports"
)

// ImportTickTask processes one batch of a bulk image import. Batch ticks do
// not retry: the coordinator reschedules on its own and a retried tick would
// race the next one.
type ImportTickTask struct {
	Task
	coordinator *imports.Coordinator
}

func NewImportTickTask(coordinator *imports.Coordinator) *ImportTickTask {
	task := NewTask(TaskTypeImportTick, "bulk")
	task.MaxRetries = 0

	return &ImportTickTask{
		Task:        task,
		coordinator: coordinator,
	}
}

func (t *ImportTickTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.coordinator.RunTick(ctx); err != nil {
		return fmt.Errorf("failed to run import tick: %w", err)
	}

	slog.Debug("Task completed", "type", "ImportTick", "duration", t.GetDuration())

	return nil
}
