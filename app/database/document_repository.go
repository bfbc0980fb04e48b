package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var _ DocumentRepository = (*DocumentRepo)(nil)

type DocumentRepo struct {
	db      *DB
	baseURL string
}

func NewDocumentRepository(db *DB, baseURL string) *DocumentRepo {
	return &DocumentRepo{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *DocumentRepo) Create(doc Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	publishedAt := doc.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}

	_, err := r.db.Exec(`
		INSERT INTO documents (
			id, title, slug, content, excerpt, status, post_type,
			author_id, featured_asset_id, published_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, doc.Title, doc.Slug, doc.Content, doc.Excerpt, doc.Status, doc.PostType,
		doc.AuthorID, doc.FeaturedAssetID, publishedAt, now, now)

	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	return id, nil
}

func (r *DocumentRepo) Get(id string) (*Document, error) {
	var doc Document
	err := r.db.QueryRow(`
		SELECT id, title, slug, content, excerpt, status, post_type,
		       author_id, featured_asset_id, published_at, created_at, updated_at
		FROM documents
		WHERE id = ?
	`, id).Scan(
		&doc.ID, &doc.Title, &doc.Slug, &doc.Content, &doc.Excerpt, &doc.Status,
		&doc.PostType, &doc.AuthorID, &doc.FeaturedAssetID,
		&doc.PublishedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentRepo) UpdateContent(id string, content string) error {
	_, err := r.db.Exec(`
		UPDATE documents
		SET content = ?, updated_at = ?
		WHERE id = ?
	`, content, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}

	return nil
}

func (r *DocumentRepo) UpdateStatus(id string, status string) error {
	_, err := r.db.Exec(`
		UPDATE documents
		SET status = ?, updated_at = ?
		WHERE id = ?
	`, status, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	return nil
}

func (r *DocumentRepo) QueryIDs(postTypes []string, status string, excludeIDs []string, limit int) ([]string, error) {
	if len(postTypes) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	args := make([]interface{}, 0, len(postTypes)+len(excludeIDs)+2)

	sb.WriteString("SELECT id FROM documents WHERE post_type IN (")
	sb.WriteString(placeholders(len(postTypes)))
	sb.WriteString(")")
	for _, pt := range postTypes {
		args = append(args, pt)
	}

	if status != "" {
		sb.WriteString(" AND status = ?")
		args = append(args, status)
	}

	if len(excludeIDs) > 0 {
		sb.WriteString(" AND id NOT IN (")
		sb.WriteString(placeholders(len(excludeIDs)))
		sb.WriteString(")")
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	sb.WriteString(" ORDER BY published_at DESC")

	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query document ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document id rows: %w", err)
	}

	return ids, nil
}

func (r *DocumentRepo) Permalink(id string) (string, error) {
	var slug string
	err := r.db.QueryRow(`SELECT slug FROM documents WHERE id = ?`, id).Scan(&slug)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document slug: %w", err)
	}

	return r.baseURL + "/" + slug, nil
}

func (r *DocumentRepo) GetDocumentCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get document count: %w", err)
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
