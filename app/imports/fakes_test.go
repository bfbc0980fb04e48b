package imports

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/avelichko/syncpress/app/database"
)

type fakeAssetEntry struct {
	filename  string
	mimeType  string
	ownerDoc  string
	originURL string
	altText   string
}

type fakeAssetRepository struct {
	mu       sync.Mutex
	assets   map[string]*fakeAssetEntry
	primary  map[string]string
	nextID   int
	storeErr error
}

var _ database.AssetRepository = (*fakeAssetRepository)(nil)

func newFakeAssetRepository() *fakeAssetRepository {
	return &fakeAssetRepository{
		assets:  make(map[string]*fakeAssetEntry),
		primary: make(map[string]string),
	}
}

func (f *fakeAssetRepository) StoreFromTemp(tmpPath, filename, mimeHint, ownerDocumentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return "", f.storeErr
	}

	if _, err := os.Stat(tmpPath); err != nil {
		return "", err
	}
	os.Remove(tmpPath)

	f.nextID++
	id := fmt.Sprintf("asset-%d", f.nextID)
	f.assets[id] = &fakeAssetEntry{
		filename: filename,
		mimeType: mimeHint,
		ownerDoc: ownerDocumentID,
	}
	return id, nil
}

func (f *fakeAssetRepository) Get(id string) (*database.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.assets[id]
	if !ok {
		return nil, nil
	}
	return &database.Asset{
		ID:              id,
		Filename:        entry.filename,
		MimeType:        entry.mimeType,
		OwnerDocumentID: entry.ownerDoc,
		OriginURL:       entry.originURL,
		AltText:         entry.altText,
	}, nil
}

func (f *fakeAssetRepository) AssetURL(id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.assets[id]
	if !ok {
		return "", fmt.Errorf("asset not found: %s", id)
	}
	return "http://localhost/media/" + entry.filename, nil
}

func (f *fakeAssetRepository) SetOriginURL(id string, originURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.assets[id]
	if !ok {
		return fmt.Errorf("asset not found: %s", id)
	}
	entry.originURL = originURL
	return nil
}

func (f *fakeAssetRepository) SetAltText(id string, altText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.assets[id]
	if !ok {
		return fmt.Errorf("asset not found: %s", id)
	}
	entry.altText = altText
	return nil
}

func (f *fakeAssetRepository) FindByOriginURL(originURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, entry := range f.assets {
		if entry.originURL == originURL {
			return id, nil
		}
	}
	return "", nil
}

func (f *fakeAssetRepository) SetPrimaryAsset(documentID, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.primary[documentID] = assetID
	return nil
}

func (f *fakeAssetRepository) HasPrimaryAsset(documentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.primary[documentID] != "", nil
}

type fakeDocumentRepository struct {
	mu   sync.Mutex
	docs map[string]*database.Document
	ids  []string
}

var _ database.DocumentRepository = (*fakeDocumentRepository)(nil)

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{docs: make(map[string]*database.Document)}
}

func (f *fakeDocumentRepository) add(doc database.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := doc
	f.docs[doc.ID] = &stored
	f.ids = append(f.ids, doc.ID)
}

func (f *fakeDocumentRepository) Create(doc database.Document) (string, error) {
	f.add(doc)
	return doc.ID, nil
}

func (f *fakeDocumentRepository) Get(id string) (*database.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepository) UpdateContent(id string, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Content = content
	return nil
}

func (f *fakeDocumentRepository) UpdateStatus(id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Status = status
	return nil
}

func (f *fakeDocumentRepository) QueryIDs(postTypes []string, status string, excludeIDs []string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	typed := make(map[string]bool, len(postTypes))
	for _, pt := range postTypes {
		typed[pt] = true
	}

	var ids []string
	for _, id := range f.ids {
		if excluded[id] || !typed[f.docs[id].PostType] {
			continue
		}
		if status != "" && f.docs[id].Status != status {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (f *fakeDocumentRepository) Permalink(id string) (string, error) {
	return "http://localhost/" + id, nil
}

func (f *fakeDocumentRepository) GetDocumentCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.docs), nil
}

type fakeRunRepository struct {
	mu          sync.Mutex
	run         *database.Run
	locked      bool
	lockExpires time.Time
}

var _ database.RunRepository = (*fakeRunRepository)(nil)

func (f *fakeRunRepository) Load() (*database.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.run == nil {
		return nil, nil
	}
	copied := *f.run
	return &copied, nil
}

func (f *fakeRunRepository) Save(run *database.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *run
	f.run = &copied
	return nil
}

func (f *fakeRunRepository) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.run = nil
	return nil
}

func (f *fakeRunRepository) AcquireLock(ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked && time.Now().Before(f.lockExpires) {
		return false, nil
	}
	f.locked = true
	f.lockExpires = time.Now().Add(ttl)
	return true, nil
}

func (f *fakeRunRepository) LockHeld() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.locked && time.Now().Before(f.lockExpires), nil
}

func (f *fakeRunRepository) ReleaseLock() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.locked = false
	return nil
}

type fakeSettingRepository struct {
	mu     sync.Mutex
	values map[string]string
}

var _ database.SettingRepository = (*fakeSettingRepository)(nil)

func newFakeSettingRepository() *fakeSettingRepository {
	return &fakeSettingRepository{values: make(map[string]string)}
}

func (f *fakeSettingRepository) Get(key, defaultValue string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if value, ok := f.values[key]; ok {
		return value, nil
	}
	return defaultValue, nil
}

func (f *fakeSettingRepository) Has(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeSettingRepository) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return nil
}

func (f *fakeSettingRepository) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.values, key)
	return nil
}

type fakeTickScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
}

var _ TickScheduler = (*fakeTickScheduler)(nil)

func (f *fakeTickScheduler) ScheduleTick(delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delays = append(f.delays, delay)
}

func (f *fakeTickScheduler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.delays)
}

type fakeDocScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

var _ DocScheduler = (*fakeDocScheduler)(nil)

func (f *fakeDocScheduler) ScheduleDocument(documentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scheduled = append(f.scheduled, documentID)
}
