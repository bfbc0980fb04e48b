package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/syncpress/app/database"
	"github.com/avelichko/syncpress/app/imports"
	"github.com/avelichko/syncpress/app/publish"
)

func NewHandler(docs database.DocumentRepository, categories database.CategoryRepository,
	tags database.TagRepository, authors database.AuthorRepository,
	settings database.SettingRepository, ingestor *publish.Ingestor,
	feedImport *publish.FeedImporter, coordinator *imports.Coordinator,
	importer ImporterInterface, resolver *imports.Resolver,
	importCfg *imports.SettingsStore, batchSize int) *Handler {
	return &Handler{
		docs:        docs,
		categories:  categories,
		tags:        tags,
		authors:     authors,
		settings:    settings,
		ingestor:    ingestor,
		feedImport:  feedImport,
		coordinator: coordinator,
		importer:    importer,
		resolver:    resolver,
		importCfg:   importCfg,
		batchSize:   batchSize,
	}
}

// GetImportPostIDs lists every document id currently eligible for image
// import, with no exclusions applied.
func (h *Handler) GetImportPostIDs(c *gin.Context) {
	config, err := h.importCfg.ImportConfig()
	if err != nil {
		slog.Error("Failed to load import config", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	ids, err := h.docs.QueryIDs(config.PostTypes, "", nil, 0)
	if err != nil {
		slog.Error("Database error", "operation", "query_ids", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post_ids":   ids,
		"count":      len(ids),
		"batch_size": h.batchSize,
	})
}

type processBatchRequest struct {
	PostIDs []string `json:"post_ids"`
}

// ProcessImportBatch runs the image import synchronously for the caller's
// ids and reports per-id whether the body changed.
func (h *Handler) ProcessImportBatch(c *gin.Context) {
	var req processBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
		return
	}
	if len(req.PostIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No post_ids provided"})
		return
	}

	updated := make(map[string]bool, len(req.PostIDs))
	updatedCount := 0

	for _, id := range req.PostIDs {
		before, err := h.docs.Get(id)
		if err != nil || before == nil {
			updated[id] = false
			continue
		}

		if err := h.importer.ProcessDocument(c.Request.Context(), id); err != nil {
			slog.Warn("Batch document import failed", "doc", id, "error", err)
			updated[id] = false
			continue
		}

		after, err := h.docs.Get(id)
		changed := err == nil && after != nil && after.Content != before.Content
		updated[id] = changed
		if changed {
			updatedCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"updated":       updated,
		"updated_count": updatedCount,
		"batch_size":    h.batchSize,
	})
}

// StartImport kicks off a bulk image import run.
func (h *Handler) StartImport(c *gin.Context) {
	err := h.coordinator.Start()
	if err != nil {
		if errors.Is(err, imports.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "Import already running"})
			return
		}
		slog.Error("Failed to start bulk import", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// GetImportStatus reports the persisted run state.
func (h *Handler) GetImportStatus(c *gin.Context) {
	run, err := h.coordinator.Status()
	if err != nil {
		slog.Error("Failed to load run state", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if run == nil {
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          run.Status,
		"started_at":      run.StartedAt.Format(time.RFC3339),
		"last_run_at":     run.LastRunAt,
		"completed_at":    run.CompletedAt,
		"processed_count": len(run.ProcessedIDs),
		"updated_count":   len(run.UpdatedEntries),
		"updated_entries": run.UpdatedEntries,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if documentCount, err := h.docs.GetDocumentCount(); err == nil {
		health["documents"] = documentCount
	}

	connected, err := h.settings.Has(settingConnectedUUID)
	if err == nil {
		health["connected"] = connected
	}

	c.JSON(http.StatusOK, health)
}
