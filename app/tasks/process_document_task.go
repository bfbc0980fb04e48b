package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelichko/syncpress/app/imports"
)

// ProcessDocumentTask imports the images of a single document in the
// background. No retries: the trigger logs failures and the next save of the
// document schedules a fresh task.
type ProcessDocumentTask struct {
	Task
	trigger *imports.Trigger
}

func NewProcessDocumentTask(trigger *imports.Trigger, documentID string) *ProcessDocumentTask {
	task := NewTask(TaskTypeProcessDocument, documentID)
	task.MaxRetries = 0

	return &ProcessDocumentTask{
		Task:    task,
		trigger: trigger,
	}
}

func (t *ProcessDocumentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.trigger.ProcessDocument(ctx, t.Key); err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}

	slog.Debug("Task completed", "type", "ProcessDocument", "doc", t.Key, "duration", t.GetDuration())

	return nil
}
