package imports

import (
	"context"
	"log/slog"
	"strings"

	"github.com/avelichko/syncpress/app/database"
)

// ReferenceResolver resolves one image reference to a local asset.
type ReferenceResolver interface {
	Resolve(ctx context.Context, ref ImageReference, ownerDocumentID string) (*ImportedAsset, error)
}

var _ ReferenceResolver = (*Resolver)(nil)

// Rewriter replaces in-scope image references in a document body with their
// local copies. Reference-level failures leave the tag as authored; partial
// success is the normal outcome, not an error.
type Rewriter struct {
	scanner  *Scanner
	resolver ReferenceResolver
	assets   database.AssetRepository
}

func NewRewriter(scanner *Scanner, resolver ReferenceResolver, assets database.AssetRepository) *Rewriter {
	return &Rewriter{
		scanner:  scanner,
		resolver: resolver,
		assets:   assets,
	}
}

// Run returns the rewritten body and the first successfully resolved asset.
// When the body has no in-scope references it is returned unchanged with no
// network calls made.
func (w *Rewriter) Run(ctx context.Context, documentID, body string, config Config) (string, *ImportedAsset) {
	refs := w.scanner.Run(body)
	if len(refs) == 0 {
		return body, nil
	}

	updated := body
	var firstAsset *ImportedAsset

	for _, ref := range refs {
		asset, err := w.resolver.Resolve(ctx, ref, documentID)
		if err != nil {
			slog.Warn("Image reference skipped", "doc", documentID, "url", ref.SourceURL, "error", err)
			continue
		}

		// Substitute only the source URL inside the tag; every other
		// attribute stays as authored.
		newTag := strings.Replace(ref.RawTag, ref.SourceURL, asset.LocalURL, 1)
		updated = strings.ReplaceAll(updated, ref.RawTag, newTag)

		if firstAsset == nil {
			firstAsset = asset
		}
	}

	if firstAsset != nil && config.FirstImageAsFeatured {
		w.assignPrimaryAsset(documentID, firstAsset)
	}

	return updated, firstAsset
}

func (w *Rewriter) assignPrimaryAsset(documentID string, asset *ImportedAsset) {
	has, err := w.assets.HasPrimaryAsset(documentID)
	if err != nil {
		slog.Warn("Failed to check primary asset", "doc", documentID, "error", err)
		return
	}
	if has {
		return
	}

	if err := w.assets.SetPrimaryAsset(documentID, asset.LocalID); err != nil {
		slog.Warn("Failed to set primary asset", "doc", documentID, "asset", asset.LocalID, "error", err)
	}
}
