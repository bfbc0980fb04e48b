package api

import (
	"context"

	"github.com/avelichko/syncpress/app/database"
	"github.com/avelichko/syncpress/app/imports"
	"github.com/avelichko/syncpress/app/publish"
)

// ImporterInterface is the per-document import surface used by the
// synchronous batch endpoint.
type ImporterInterface interface {
	ProcessDocument(ctx context.Context, documentID string) error
}

var _ ImporterInterface = (*imports.Trigger)(nil)

type Handler struct {
	docs        database.DocumentRepository
	categories  database.CategoryRepository
	tags        database.TagRepository
	authors     database.AuthorRepository
	settings    database.SettingRepository
	ingestor    *publish.Ingestor
	feedImport  *publish.FeedImporter
	coordinator *imports.Coordinator
	importer    ImporterInterface
	resolver    *imports.Resolver
	importCfg   *imports.SettingsStore
	batchSize   int
}
