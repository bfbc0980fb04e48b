package database

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var _ AssetRepository = (*AssetRepo)(nil)

type AssetRepo struct {
	db       *DB
	mediaDir string
	baseURL  string
}

func NewAssetRepository(db *DB, mediaDir, baseURL string) *AssetRepo {
	return &AssetRepo{
		db:       db,
		mediaDir: mediaDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (r *AssetRepo) StoreFromTemp(tmpPath, filename, mimeHint, ownerDocumentID string) (string, error) {
	if err := os.MkdirAll(r.mediaDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	stored, err := r.uniqueFilename(filename)
	if err != nil {
		return "", fmt.Errorf("failed to pick filename: %w", err)
	}

	if err := moveFile(tmpPath, filepath.Join(r.mediaDir, stored)); err != nil {
		return "", fmt.Errorf("failed to store media file: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO assets (id, filename, mime_type, owner_document_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, stored, mimeHint, ownerDocumentID, time.Now().UTC())

	if err != nil {
		// The file is already in place; remove it so a failed insert does
		// not leave an orphan on disk.
		os.Remove(filepath.Join(r.mediaDir, stored))
		return "", fmt.Errorf("failed to record asset: %w", err)
	}

	return id, nil
}

func (r *AssetRepo) Get(id string) (*Asset, error) {
	var asset Asset
	err := r.db.QueryRow(`
		SELECT id, filename, mime_type, owner_document_id, origin_url, alt_text, created_at
		FROM assets
		WHERE id = ?
	`, id).Scan(
		&asset.ID, &asset.Filename, &asset.MimeType, &asset.OwnerDocumentID,
		&asset.OriginURL, &asset.AltText, &asset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

func (r *AssetRepo) AssetURL(id string) (string, error) {
	var filename string
	err := r.db.QueryRow(`SELECT filename FROM assets WHERE id = ?`, id).Scan(&filename)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("asset %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get asset filename: %w", err)
	}

	return r.baseURL + "/media/" + filename, nil
}

func (r *AssetRepo) SetOriginURL(id string, originURL string) error {
	_, err := r.db.Exec(`UPDATE assets SET origin_url = ? WHERE id = ?`, originURL, id)
	if err != nil {
		return fmt.Errorf("failed to set asset origin URL: %w", err)
	}
	return nil
}

func (r *AssetRepo) SetAltText(id string, altText string) error {
	_, err := r.db.Exec(`UPDATE assets SET alt_text = ? WHERE id = ?`, altText, id)
	if err != nil {
		return fmt.Errorf("failed to set asset alt text: %w", err)
	}
	return nil
}

func (r *AssetRepo) FindByOriginURL(originURL string) (string, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM assets WHERE origin_url = ? LIMIT 1
	`, originURL).Scan(&id)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find asset by origin URL: %w", err)
	}

	return id, nil
}

func (r *AssetRepo) SetPrimaryAsset(documentID, assetID string) error {
	_, err := r.db.Exec(`
		UPDATE documents
		SET featured_asset_id = ?, updated_at = ?
		WHERE id = ?
	`, assetID, time.Now().UTC(), documentID)

	if err != nil {
		return fmt.Errorf("failed to set primary asset: %w", err)
	}

	return nil
}

func (r *AssetRepo) HasPrimaryAsset(documentID string) (bool, error) {
	var featured string
	err := r.db.QueryRow(`
		SELECT featured_asset_id FROM documents WHERE id = ?
	`, documentID).Scan(&featured)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check primary asset: %w", err)
	}

	return featured != "", nil
}

// uniqueFilename appends -1, -2, ... before the extension until the name is
// free in the media directory.
func (r *AssetRepo) uniqueFilename(filename string) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = "image"
	}

	candidate := base + ext
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(r.mediaDir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
}

// moveFile renames and falls back to copy+remove when the temp file lives on
// a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
