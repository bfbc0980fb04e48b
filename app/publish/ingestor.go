package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avelichko/syncpress/app/database"
)

// SaveHook is notified after each created document, once its row is
// visible. The image import trigger hangs off this.
type SaveHook interface {
	HandleSave(ctx context.Context, documentID string)
}

var knownStatuses = map[string]bool{
	"publish": true,
	"draft":   true,
	"pending": true,
	"private": true,
}

var knownPostTypes = map[string]bool{
	"post": true,
	"page": true,
}

// Submissions carry dates in whatever format the source produced.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Ingestor turns external submissions into stored documents. One failed
// submission never aborts the batch; its error lands in the report and the
// rest proceed.
type Ingestor struct {
	docs       database.DocumentRepository
	categories database.CategoryRepository
	tags       database.TagRepository
	authors    database.AuthorRepository
	assets     database.AssetRepository
	saveHook   SaveHook
}

func NewIngestor(docs database.DocumentRepository, categories database.CategoryRepository,
	tags database.TagRepository, authors database.AuthorRepository,
	assets database.AssetRepository, saveHook SaveHook) *Ingestor {
	return &Ingestor{
		docs:       docs,
		categories: categories,
		tags:       tags,
		authors:    authors,
		assets:     assets,
		saveHook:   saveHook,
	}
}

func (g *Ingestor) Run(ctx context.Context, subs []Submission) *Report {
	report := &Report{Results: make([]Result, 0, len(subs))}

	for _, sub := range subs {
		result := Result{ExternalID: sub.ExternalID}

		id, err := g.ingest(ctx, sub)
		if err != nil {
			slog.Warn("Submission rejected", "external_id", sub.ExternalID, "title", sub.Title, "error", err)
			result.Error = err.Error()
			report.Failed++
			report.Results = append(report.Results, result)
			continue
		}

		result.DocumentID = id
		if permalink, err := g.docs.Permalink(id); err == nil {
			result.Permalink = permalink
		}
		report.Created++
		report.Results = append(report.Results, result)
	}

	slog.Info("Submissions ingested", "created", report.Created, "failed", report.Failed)

	return report
}

func (g *Ingestor) ingest(ctx context.Context, sub Submission) (string, error) {
	if strings.TrimSpace(sub.Title) == "" {
		return "", fmt.Errorf("submission has no title")
	}

	doc := database.Document{
		Title:   sub.Title,
		Content: sub.Content,
		Excerpt: sub.Excerpt,
	}

	doc.Slug = sub.Slug
	if doc.Slug == "" {
		doc.Slug = Slugify(sub.Title)
	}

	doc.Status = normalizeStatus(sub.Status)
	doc.PostType = normalizePostType(sub.PostType)
	doc.PublishedAt = parseDate(sub.Date)

	// A future-dated publish is stored as scheduled; the host decides when
	// it goes live.
	if doc.Status == "publish" && doc.PublishedAt.After(time.Now()) {
		doc.Status = "scheduled"
	}

	author, err := g.resolveAuthor(sub.AuthorID)
	if err != nil {
		return "", err
	}
	doc.AuthorID = author

	if sub.FeaturedAssetID != "" {
		if g.assetUsable(sub.FeaturedAssetID) {
			doc.FeaturedAssetID = sub.FeaturedAssetID
		} else {
			slog.Warn("Featured asset rejected", "asset", sub.FeaturedAssetID, "title", sub.Title)
		}
	}

	id, err := g.docs.Create(doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	if err := g.attachCategories(id, sub.Categories); err != nil {
		return "", err
	}
	if err := g.attachTags(id, sub.Tags); err != nil {
		return "", err
	}

	if g.saveHook != nil {
		g.saveHook.HandleSave(ctx, id)
	}

	return id, nil
}

func (g *Ingestor) resolveAuthor(authorID string) (string, error) {
	if authorID != "" {
		author, err := g.authors.Get(authorID)
		if err != nil {
			return "", fmt.Errorf("failed to look up author: %w", err)
		}
		if author != nil {
			return author.ID, nil
		}
	}

	author, err := g.authors.DefaultAuthor()
	if err != nil {
		return "", fmt.Errorf("failed to resolve default author: %w", err)
	}
	if author == nil {
		return "", fmt.Errorf("no authors available")
	}
	return author.ID, nil
}

func (g *Ingestor) assetUsable(assetID string) bool {
	asset, err := g.assets.Get(assetID)
	if err != nil || asset == nil {
		return false
	}
	return strings.HasPrefix(asset.MimeType, "image/")
}

// attachCategories resolves each value as an existing category id first,
// then as a name, creating the category when neither matches.
func (g *Ingestor) attachCategories(documentID string, values []string) error {
	var ids []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if existing, err := g.categories.Get(value); err != nil {
			return fmt.Errorf("failed to look up category: %w", err)
		} else if existing != nil {
			ids = append(ids, existing.ID)
			continue
		}

		id, err := g.categories.GetOrCreate(value)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil
	}
	if err := g.categories.Attach(documentID, ids); err != nil {
		return fmt.Errorf("failed to attach categories: %w", err)
	}
	return nil
}

func (g *Ingestor) attachTags(documentID string, values []string) error {
	var ids []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		id, err := g.tags.GetOrCreate(value)
		if err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil
	}
	if err := g.tags.Attach(documentID, ids); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if knownStatuses[status] {
		return status
	}
	return "draft"
}

func normalizePostType(postType string) string {
	postType = strings.ToLower(strings.TrimSpace(postType))
	if knownPostTypes[postType] {
		return postType
	}
	return "post"
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now()
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}

	return time.Now()
}
