package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var _ CategoryRepository = (*CategoryRepo)(nil)
var _ TagRepository = (*TagRepo)(nil)

type CategoryRepo struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) List(search string, hideEmpty bool) ([]Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, COUNT(dc.document_id)
		FROM categories c
		LEFT JOIN document_categories dc ON dc.category_id = c.id
	`
	var args []interface{}
	if search != "" {
		query += " WHERE c.name LIKE ?"
		args = append(args, "%"+search+"%")
	}
	query += " GROUP BY c.id, c.name, c.slug, c.description"
	if hideEmpty {
		query += " HAVING COUNT(dc.document_id) > 0"
	}
	query += " ORDER BY c.name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepo) Get(id string) (*Category, error) {
	var c Category
	err := r.db.QueryRow(`
		SELECT id, name, slug, description FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepo) GetOrCreate(name string) (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up category: %w", err)
	}

	id = uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO categories (id, name, slug) VALUES (?, ?, ?)
	`, id, name, nameToSlug(name))
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}

	return id, nil
}

func (r *CategoryRepo) Attach(documentID string, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		_, err := r.db.Exec(`
			INSERT INTO document_categories (document_id, category_id)
			VALUES (?, ?)
			ON CONFLICT (document_id, category_id) DO NOTHING
		`, documentID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to attach category: %w", err)
		}
	}
	return nil
}

type TagRepo struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

func (r *TagRepo) List(search string, hideEmpty bool) ([]Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug, COUNT(dt.document_id)
		FROM tags t
		LEFT JOIN document_tags dt ON dt.tag_id = t.id
	`
	var args []interface{}
	if search != "" {
		query += " WHERE t.name LIKE ?"
		args = append(args, "%"+search+"%")
	}
	query += " GROUP BY t.id, t.name, t.slug"
	if hideEmpty {
		query += " HAVING COUNT(dt.document_id) > 0"
	}
	query += " ORDER BY t.name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

func (r *TagRepo) GetOrCreate(name string) (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up tag: %w", err)
	}

	id = uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)
	`, id, name, nameToSlug(name))
	if err != nil {
		return "", fmt.Errorf("failed to create tag: %w", err)
	}

	return id, nil
}

func (r *TagRepo) Attach(documentID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := r.db.Exec(`
			INSERT INTO document_tags (document_id, tag_id)
			VALUES (?, ?)
			ON CONFLICT (document_id, tag_id) DO NOTHING
		`, documentID, tagID)
		if err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}
	return nil
}

func nameToSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.FieldsFunc(slug, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}), "-")
	return slug
}
