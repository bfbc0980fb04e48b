package database

import (
	"time"
)

type DocumentRepository interface {
	Create(doc Document) (string, error)
	Get(id string) (*Document, error)
	UpdateContent(id string, content string) error
	UpdateStatus(id string, status string) error

	// QueryIDs returns ids of documents matching the given post types and
	// status (empty status matches all), excluding the given ids, ordered
	// by publish date newest-first. A non-positive limit returns all matches.
	QueryIDs(postTypes []string, status string, excludeIDs []string, limit int) ([]string, error)

	Permalink(id string) (string, error)
	GetDocumentCount() (int, error)
}

type AssetRepository interface {
	// StoreFromTemp moves a downloaded temp file into the media directory
	// and records the asset. The temp file is consumed on success.
	StoreFromTemp(tmpPath, filename, mimeHint, ownerDocumentID string) (string, error)

	Get(id string) (*Asset, error)
	AssetURL(id string) (string, error)
	SetOriginURL(id string, originURL string) error
	SetAltText(id string, altText string) error

	// FindByOriginURL returns the id of the asset whose stored origin URL
	// exactly matches, or empty string when none exists.
	FindByOriginURL(originURL string) (string, error)

	SetPrimaryAsset(documentID, assetID string) error
	HasPrimaryAsset(documentID string) (bool, error)
}

type CategoryRepository interface {
	List(search string, hideEmpty bool) ([]Category, error)
	Get(id string) (*Category, error)
	GetOrCreate(name string) (string, error)
	Attach(documentID string, categoryIDs []string) error
}

type TagRepository interface {
	List(search string, hideEmpty bool) ([]Tag, error)
	GetOrCreate(name string) (string, error)
	Attach(documentID string, tagIDs []string) error
}

type AuthorRepository interface {
	List(search string) ([]Author, error)
	Get(id string) (*Author, error)

	// DefaultAuthor returns the first administrator, falling back to the
	// first author row when no administrator exists.
	DefaultAuthor() (*Author, error)
}

type SettingRepository interface {
	Get(key, defaultValue string) (string, error)
	Has(key string) (bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type RunRepository interface {
	Load() (*Run, error)
	Save(run *Run) error
	Reset() error

	// AcquireLock takes the bulk-run lock when it is free or expired.
	// Returns false when another run holds it.
	AcquireLock(ttl time.Duration) (bool, error)
	LockHeld() (bool, error)
	ReleaseLock() error
}
