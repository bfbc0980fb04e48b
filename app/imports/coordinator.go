package imports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelichko/syncpress/app/database"
)

// TickScheduler enqueues the next batch tick after a delay. Implemented by
// the task scheduler so the coordinator stays free of worker-pool details.
type TickScheduler interface {
	ScheduleTick(delay time.Duration)
}

// BodyRewriter is the rewrite pipeline the coordinator drives per document.
type BodyRewriter interface {
	Run(ctx context.Context, documentID, body string, config Config) (string, *ImportedAsset)
}

var _ BodyRewriter = (*Rewriter)(nil)

// Coordinator runs the bulk image import as a chain of self-rescheduling
// batch ticks. State is persisted after every batch so an interrupted run
// resumes where it stopped instead of revisiting documents.
type Coordinator struct {
	docs      database.DocumentRepository
	runs      database.RunRepository
	settings  *SettingsStore
	rewriter  BodyRewriter
	scheduler TickScheduler

	batchSize int
	tickDelay time.Duration
	lockTTL   time.Duration
}

func NewCoordinator(docs database.DocumentRepository, runs database.RunRepository, settings *SettingsStore, rewriter BodyRewriter, batchSize int, tickDelay time.Duration) *Coordinator {
	return &Coordinator{
		docs:      docs,
		runs:      runs,
		settings:  settings,
		rewriter:  rewriter,
		batchSize: batchSize,
		tickDelay: tickDelay,
		lockTTL:   time.Hour,
	}
}

// SetScheduler wires the tick scheduler after construction. The scheduler
// depends on the coordinator to run ticks, so the reference is set late to
// keep construction acyclic.
func (c *Coordinator) SetScheduler(scheduler TickScheduler) {
	c.scheduler = scheduler
}

// Start begins a new bulk run. Returns ErrAlreadyRunning when a live run
// holds the lock; an expired lock from a crashed run is taken over.
func (c *Coordinator) Start() error {
	acquired, err := c.runs.AcquireLock(c.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return ErrAlreadyRunning
	}

	if err := c.runs.Reset(); err != nil {
		c.releaseLock()
		return fmt.Errorf("failed to reset run state: %w", err)
	}

	run := &database.Run{
		Status:    database.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := c.runs.Save(run); err != nil {
		c.releaseLock()
		return fmt.Errorf("failed to save run state: %w", err)
	}

	slog.Info("Bulk image import started")
	c.scheduler.ScheduleTick(0)
	return nil
}

// RunTick processes one batch and reschedules itself until no eligible
// documents remain. A tick whose lock is gone exits without touching the
// run state; another run owns it now.
func (c *Coordinator) RunTick(ctx context.Context) error {
	held, err := c.runs.LockHeld()
	if err != nil {
		return fmt.Errorf("failed to check run lock: %w", err)
	}
	if !held {
		slog.Debug("Bulk import tick skipped, lock not held")
		return nil
	}

	run, err := c.runs.Load()
	if err != nil {
		return fmt.Errorf("failed to load run state: %w", err)
	}
	if run == nil || run.Status != database.RunStatusRunning {
		return nil
	}

	config, err := c.settings.ImportConfig()
	if err != nil {
		return fmt.Errorf("failed to load import config: %w", err)
	}

	// Bulk runs walk every document of the configured types regardless of
	// status; the publish gate applies to save events only.
	ids, err := c.docs.QueryIDs(config.PostTypes, "", run.ProcessedIDs, c.batchSize)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	if len(ids) == 0 {
		return c.complete(run)
	}

	for _, id := range ids {
		entry, err := c.processDocument(ctx, id, config)
		if err != nil {
			slog.Warn("Document skipped during bulk import", "doc", id, "error", err)
		}
		run.ProcessedIDs = append(run.ProcessedIDs, id)
		if entry != nil {
			run.UpdatedEntries = append(run.UpdatedEntries, *entry)
		}
	}

	now := time.Now()
	run.LastRunAt = &now
	if err := c.runs.Save(run); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}

	slog.Debug("Bulk import batch processed", "batch", len(ids), "total", len(run.ProcessedIDs))
	c.scheduler.ScheduleTick(c.tickDelay)
	return nil
}

func (c *Coordinator) processDocument(ctx context.Context, id string, config Config) (*database.RunEntry, error) {
	doc, err := c.docs.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	updated, _ := c.rewriter.Run(ctx, doc.ID, doc.Content, config)
	if updated == doc.Content {
		return nil, nil
	}

	if err := c.docs.UpdateContent(doc.ID, updated); err != nil {
		return nil, fmt.Errorf("failed to update document content: %w", err)
	}

	return &database.RunEntry{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Time:       time.Now(),
	}, nil
}

func (c *Coordinator) complete(run *database.Run) error {
	now := time.Now()
	run.Status = database.RunStatusCompleted
	run.CompletedAt = &now
	if err := c.runs.Save(run); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}

	c.releaseLock()
	slog.Info("Bulk image import completed", "processed", len(run.ProcessedIDs), "updated", len(run.UpdatedEntries))
	return nil
}

func (c *Coordinator) releaseLock() {
	if err := c.runs.ReleaseLock(); err != nil {
		slog.Warn("Failed to release run lock", "error", err)
	}
}

// Status reports the persisted run state, or nil when no run has happened.
func (c *Coordinator) Status() (*database.Run, error) {
	return c.runs.Load()
}
