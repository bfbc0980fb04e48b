package database

import (
	"database/sql"
	"fmt"
)

var _ SettingRepository = (*SettingRepo)(nil)

type SettingRepo struct {
	db *DB
}

func NewSettingRepository(db *DB) *SettingRepo {
	return &SettingRepo{db: db}
}

func (r *SettingRepo) Get(key, defaultValue string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *SettingRepo) Has(key string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM settings WHERE key = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check setting %s: %w", key, err)
	}
	return true, nil
}

func (r *SettingRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingRepo) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
