package imports

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeResolver maps source URLs to canned results. URLs in failURLs fail
// with a fetch error.
type fakeResolver struct {
	failURLs map[string]bool
	calls    int
}

var _ ReferenceResolver = (*fakeResolver)(nil)

func (f *fakeResolver) Resolve(ctx context.Context, ref ImageReference, ownerDocumentID string) (*ImportedAsset, error) {
	f.calls++
	if f.failURLs[ref.SourceURL] {
		return nil, &ImportError{Reason: ReasonFetchFailed, URL: ref.SourceURL, Err: errors.New("connection refused")}
	}
	return &ImportedAsset{
		LocalID:   fmt.Sprintf("asset-%d", f.calls),
		LocalURL:  "http://localhost/media/local-" + ref.AltText + ".jpg",
		OriginURL: ref.SourceURL,
		AltText:   ref.AltText,
	}, nil
}

func TestRewriterRun(t *testing.T) {
	assets := newFakeAssetRepository()
	resolver := &fakeResolver{}
	rewriter := NewRewriter(NewScanner("https://cdn.example.com/"), resolver, assets)

	body := `<p>Text</p><img src="https://cdn.example.com/a.jpg" alt="one"><img src="https://cdn.example.com/b.jpg" alt="two">`

	updated, first := rewriter.Run(context.Background(), "doc-1", body, Config{})

	expected := `<p>Text</p><img src="http://localhost/media/local-one.jpg" alt="one"><img src="http://localhost/media/local-two.jpg" alt="two">`
	if updated != expected {
		t.Errorf("Unexpected rewritten body:\n%s", updated)
	}
	if first == nil || first.LocalID != "asset-1" {
		t.Errorf("Expected first asset to be asset-1, got %+v", first)
	}
}

func TestRewriterRunPartialFailure(t *testing.T) {
	assets := newFakeAssetRepository()
	resolver := &fakeResolver{failURLs: map[string]bool{"https://cdn.example.com/broken.jpg": true}}
	rewriter := NewRewriter(NewScanner("https://cdn.example.com/"), resolver, assets)

	body := `<img src="https://cdn.example.com/broken.jpg" alt="bad"><img src="https://cdn.example.com/ok.jpg" alt="good">`

	updated, first := rewriter.Run(context.Background(), "doc-1", body, Config{})

	expected := `<img src="https://cdn.example.com/broken.jpg" alt="bad"><img src="http://localhost/media/local-good.jpg" alt="good">`
	if updated != expected {
		t.Errorf("Unexpected rewritten body:\n%s", updated)
	}
	if first == nil || first.AltText != "good" {
		t.Errorf("Expected first asset from surviving reference, got %+v", first)
	}
}

func TestRewriterRunNoReferences(t *testing.T) {
	assets := newFakeAssetRepository()
	resolver := &fakeResolver{}
	rewriter := NewRewriter(NewScanner("https://cdn.example.com/"), resolver, assets)

	body := `<p>No images</p><img src="https://elsewhere.test/x.jpg">`

	updated, first := rewriter.Run(context.Background(), "doc-1", body, Config{})

	if updated != body {
		t.Errorf("Expected body unchanged, got %s", updated)
	}
	if first != nil {
		t.Errorf("Expected no asset, got %+v", first)
	}
	if resolver.calls != 0 {
		t.Errorf("Expected no resolver calls, got %d", resolver.calls)
	}
}

func TestRewriterRunSetsFeaturedAsset(t *testing.T) {
	assets := newFakeAssetRepository()
	resolver := &fakeResolver{}
	rewriter := NewRewriter(NewScanner("https://cdn.example.com/"), resolver, assets)

	body := `<img src="https://cdn.example.com/a.jpg" alt="one">`

	rewriter.Run(context.Background(), "doc-1", body, Config{FirstImageAsFeatured: true})

	has, err := assets.HasPrimaryAsset("doc-1")
	if err != nil {
		t.Fatalf("HasPrimaryAsset failed: %v", err)
	}
	if !has {
		t.Error("Expected primary asset to be set")
	}
}

func TestRewriterRunKeepsExistingFeaturedAsset(t *testing.T) {
	assets := newFakeAssetRepository()
	assets.SetPrimaryAsset("doc-1", "existing-asset")
	resolver := &fakeResolver{}
	rewriter := NewRewriter(NewScanner("https://cdn.example.com/"), resolver, assets)

	body := `<img src="https://cdn.example.com/a.jpg" alt="one">`

	rewriter.Run(context.Background(), "doc-1", body, Config{FirstImageAsFeatured: true})

	if assets.primary["doc-1"] != "existing-asset" {
		t.Errorf("Expected existing primary asset untouched, got %s", assets.primary["doc-1"])
	}
}
