package imports

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/avelichko/syncpress/app/database"
)

// Decision classifies what a document save should trigger.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionImmediate
	DecisionDeferred
)

// ShouldProcess decides whether a saved document gets its images imported.
// Only published documents of a configured post type qualify; drafts are
// picked up on the save that publishes them.
func ShouldProcess(doc *database.Document, config Config) Decision {
	if !config.AutoImport {
		return DecisionSkip
	}
	if !slices.Contains(config.PostTypes, doc.PostType) {
		return DecisionSkip
	}
	if doc.Status != "publish" {
		return DecisionSkip
	}
	if config.ProcessingMode == ModeImmediate {
		return DecisionImmediate
	}
	return DecisionDeferred
}

// DocScheduler enqueues a deferred per-document import.
type DocScheduler interface {
	ScheduleDocument(documentID string)
}

// Trigger reacts to document saves. Deferred work goes through the task
// scheduler; immediate work runs inline before the save call returns. The
// inProgress set prevents the content update written by an import from
// triggering a second import of the same document.
type Trigger struct {
	docs      database.DocumentRepository
	settings  *SettingsStore
	rewriter  BodyRewriter
	scheduler DocScheduler

	mu         sync.Mutex
	inProgress map[string]bool
}

func NewTrigger(docs database.DocumentRepository, settings *SettingsStore, rewriter BodyRewriter) *Trigger {
	return &Trigger{
		docs:       docs,
		settings:   settings,
		rewriter:   rewriter,
		inProgress: make(map[string]bool),
	}
}

func (t *Trigger) SetScheduler(scheduler DocScheduler) {
	t.scheduler = scheduler
}

// HandleSave is called after a document is created or updated. Errors are
// logged, not returned: a failed image import never fails the save.
func (t *Trigger) HandleSave(ctx context.Context, documentID string) {
	if t.busy(documentID) {
		return
	}

	doc, err := t.docs.Get(documentID)
	if err != nil {
		slog.Warn("Failed to load saved document", "doc", documentID, "error", err)
		return
	}
	if doc == nil {
		return
	}

	config, err := t.settings.ImportConfig()
	if err != nil {
		slog.Warn("Failed to load import config", "doc", documentID, "error", err)
		return
	}

	switch ShouldProcess(doc, config) {
	case DecisionImmediate:
		if err := t.ProcessDocument(ctx, documentID); err != nil {
			slog.Warn("Immediate image import failed", "doc", documentID, "error", err)
		}
	case DecisionDeferred:
		t.scheduler.ScheduleDocument(documentID)
	}
}

// ProcessDocument imports the images of a single document and persists the
// rewritten body when it changed.
func (t *Trigger) ProcessDocument(ctx context.Context, documentID string) error {
	t.mu.Lock()
	if t.inProgress[documentID] {
		t.mu.Unlock()
		return nil
	}
	t.inProgress[documentID] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inProgress, documentID)
		t.mu.Unlock()
	}()

	doc, err := t.docs.Get(documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil
	}

	config, err := t.settings.ImportConfig()
	if err != nil {
		return fmt.Errorf("failed to load import config: %w", err)
	}

	updated, _ := t.rewriter.Run(ctx, doc.ID, doc.Content, config)
	if updated == doc.Content {
		return nil
	}

	if err := t.docs.UpdateContent(doc.ID, updated); err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}

	slog.Debug("Document images imported", "doc", documentID)
	return nil
}

func (t *Trigger) busy(documentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inProgress[documentID]
}
