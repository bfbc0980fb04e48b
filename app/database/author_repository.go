package database

import (
	"database/sql"
	"fmt"
)

var _ AuthorRepository = (*AuthorRepo)(nil)

type AuthorRepo struct {
	db *DB
}

func NewAuthorRepository(db *DB) *AuthorRepo {
	return &AuthorRepo{db: db}
}

func (r *AuthorRepo) List(search string) ([]Author, error) {
	query := `SELECT id, name, role FROM authors`
	var args []interface{}
	if search != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Role); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}

	return authors, nil
}

func (r *AuthorRepo) Get(id string) (*Author, error) {
	var a Author
	err := r.db.QueryRow(`SELECT id, name, role FROM authors WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Role)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return &a, nil
}

func (r *AuthorRepo) DefaultAuthor() (*Author, error) {
	var a Author
	err := r.db.QueryRow(`
		SELECT id, name, role FROM authors
		WHERE role = 'administrator'
		ORDER BY created_at
		LIMIT 1
	`).Scan(&a.ID, &a.Name, &a.Role)

	if err == sql.ErrNoRows {
		err = r.db.QueryRow(`
			SELECT id, name, role FROM authors ORDER BY created_at LIMIT 1
		`).Scan(&a.ID, &a.Name, &a.Role)
	}

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no authors exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default author: %w", err)
	}

	return &a, nil
}
