package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelichko/syncpress/app/imports"
	"github.com/avelichko/syncpress/app/publish"
)

const (
	settingSecretToken   = "secret_token"
	settingConnectedUUID = "connected_uuid"
	settingConnectedAt   = "connected_at"
)

type commandRequest struct {
	Command string      `json:"command"`
	Data    commandData `json:"data"`
}

type commandData struct {
	UUID      string               `json:"uuid"`
	Posts     []publish.Submission `json:"posts"`
	Search    string               `json:"search"`
	HideEmpty bool                 `json:"hide_empty"`
	URL       string               `json:"url"`
	AltText   string               `json:"alt_text"`
	PostID    string               `json:"post_id"`
	State     string               `json:"state"`
}

type commandFunc func(h *Handler, c *gin.Context, data commandData)

// commandHandlers is the closed command set. Anything else is a 400.
var commandHandlers = map[string]commandFunc{
	"connect":                 (*Handler).cmdConnect,
	"disconnect":              (*Handler).cmdDisconnect,
	"check_connection_status": (*Handler).cmdCheckConnection,
	"publish_posts":           (*Handler).cmdPublishPosts,
	"get_authors":             (*Handler).cmdGetAuthors,
	"get_post_types":          (*Handler).cmdGetPostTypes,
	"get_categories":          (*Handler).cmdGetCategories,
	"get_tags":                (*Handler).cmdGetTags,
	"upload_media":            (*Handler).cmdUploadMedia,
	"import_feed":             (*Handler).cmdImportFeed,
}

func (h *Handler) HandleCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Malformed request body"})
		return
	}

	handler, ok := commandHandlers[req.Command]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown command: " + req.Command})
		return
	}

	if !h.authorizeCommand(c, req.Command, req.Data) {
		return
	}

	handler(h, c, req.Data)
}

// authorizeCommand matches the request uuid against the per-install secret
// token for every command, connect included. Commands other than connect
// additionally require an established connection. Writes the error response
// on failure.
func (h *Handler) authorizeCommand(c *gin.Context, command string, data commandData) bool {
	if data.UUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing uuid"})
		return false
	}

	token, err := h.settings.Get(settingSecretToken, "")
	if err != nil {
		slog.Error("Failed to read secret token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return false
	}
	if token == "" || data.UUID != token {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid uuid"})
		return false
	}

	if command == "connect" {
		return true
	}

	connected, err := h.settings.Get(settingConnectedUUID, "")
	if err != nil {
		slog.Error("Failed to read connection state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return false
	}
	if connected == "" {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not connected"})
		return false
	}

	return true
}

func (h *Handler) cmdConnect(c *gin.Context, data commandData) {
	now := nowRFC3339()
	if err := h.settings.Set(settingConnectedUUID, data.UUID); err != nil {
		slog.Error("Failed to store connection", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return
	}
	if err := h.settings.Set(settingConnectedAt, now); err != nil {
		slog.Warn("Failed to store connection time", "error", err)
	}

	slog.Info("External source connected")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Connected"})
}

func (h *Handler) cmdDisconnect(c *gin.Context, data commandData) {
	if err := h.settings.Delete(settingConnectedUUID); err != nil {
		slog.Error("Failed to clear connection", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return
	}
	h.settings.Delete(settingConnectedAt)

	// Rotate the secret; the old token no longer authorizes a reconnect.
	if err := h.settings.Set(settingSecretToken, uuid.NewString()); err != nil {
		slog.Warn("Failed to rotate secret token", "error", err)
	}

	slog.Info("External source disconnected")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Disconnected"})
}

func (h *Handler) cmdCheckConnection(c *gin.Context, data commandData) {
	connectedAt, _ := h.settings.Get(settingConnectedAt, "")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connected":    true,
		"connected_at": connectedAt,
	})
}

func (h *Handler) cmdPublishPosts(c *gin.Context, data commandData) {
	if len(data.Posts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No posts provided"})
		return
	}

	report := h.ingestor.Run(c.Request.Context(), data.Posts)
	if report.Created == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "No posts created",
			"results": report.Results,
		})
		return
	}

	permalinks := make(map[string]string, report.Created)
	for _, result := range report.Results {
		if result.DocumentID != "" {
			permalinks[result.DocumentID] = result.Permalink
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"created":    report.Created,
		"failed":     report.Failed,
		"permalinks": permalinks,
		"results":    report.Results,
	})
}

func (h *Handler) cmdGetAuthors(c *gin.Context, data commandData) {
	authors, err := h.authors.List(data.Search)
	if err != nil {
		slog.Error("Failed to list authors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(authors))
	for _, author := range authors {
		out = append(out, gin.H{"id": author.ID, "name": author.Name, "role": author.Role})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "authors": out})
}

func (h *Handler) cmdGetPostTypes(c *gin.Context, data commandData) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"post_types": []gin.H{
			{"name": "post", "label": "Posts"},
			{"name": "page", "label": "Pages"},
		},
	})
}

func (h *Handler) cmdGetCategories(c *gin.Context, data commandData) {
	categories, err := h.categories.List(data.Search, data.HideEmpty)
	if err != nil {
		slog.Error("Failed to list categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		out = append(out, gin.H{
			"id":          category.ID,
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"count":       category.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": out})
}

func (h *Handler) cmdGetTags(c *gin.Context, data commandData) {
	tags, err := h.tags.List(data.Search, data.HideEmpty)
	if err != nil {
		slog.Error("Failed to list tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(tags))
	for _, tag := range tags {
		out = append(out, gin.H{"id": tag.ID, "name": tag.Name, "slug": tag.Slug, "count": tag.Count})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tags": out})
}

func (h *Handler) cmdUploadMedia(c *gin.Context, data commandData) {
	if data.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing media url"})
		return
	}

	ref := imports.ImageReference{SourceURL: data.URL, AltText: data.AltText}
	asset, err := h.resolver.Resolve(c.Request.Context(), ref, data.PostID)
	if err != nil {
		slog.Warn("Media upload failed", "url", data.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"asset_id": asset.LocalID,
		"url":      asset.LocalURL,
	})
}

func (h *Handler) cmdImportFeed(c *gin.Context, data commandData) {
	if data.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing feed url"})
		return
	}

	report, err := h.feedImport.Run(c.Request.Context(), data.URL, data.State)
	if err != nil {
		slog.Warn("Feed import failed", "url", data.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": report.Created,
		"failed":  report.Failed,
		"results": report.Results,
	})
}

func nowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}
