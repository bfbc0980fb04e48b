package imports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestResolver(assets *fakeAssetRepository) *Resolver {
	return NewResolver(assets, &http.Client{}, "syncpress-test/1.0", 5*time.Second)
}

func TestResolverResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fast") != "1" {
			t.Errorf("Expected fast=1 query hint, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	assets := newFakeAssetRepository()
	resolver := newTestResolver(assets)

	ref := ImageReference{
		RawTag:    `<img src="` + server.URL + `/photos/pic.jpg?w=800">`,
		SourceURL: server.URL + "/photos/pic.jpg?w=800",
		AltText:   "A picture",
	}

	asset, err := resolver.Resolve(context.Background(), ref, "doc-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if asset.OriginURL != server.URL+"/photos/pic.jpg" {
		t.Errorf("Expected query-stripped origin URL, got %s", asset.OriginURL)
	}
	if !strings.HasSuffix(asset.LocalURL, "/media/pic.jpg") {
		t.Errorf("Unexpected local URL: %s", asset.LocalURL)
	}

	stored, err := assets.Get(asset.LocalID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.AltText != "A picture" {
		t.Errorf("Expected alt text stored, got %q", stored.AltText)
	}
	if stored.MimeType != "image/jpeg" {
		t.Errorf("Unexpected mime type: %s", stored.MimeType)
	}
}

func TestResolverResolveDeduplicates(t *testing.T) {
	var downloads int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	assets := newFakeAssetRepository()
	resolver := newTestResolver(assets)

	first := ImageReference{SourceURL: server.URL + "/pic.jpg?w=800"}
	second := ImageReference{SourceURL: server.URL + "/pic.jpg?w=100&h=50"}

	a1, err := resolver.Resolve(context.Background(), first, "doc-1")
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	a2, err := resolver.Resolve(context.Background(), second, "doc-2")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if a1.LocalID != a2.LocalID {
		t.Errorf("Expected dedup to reuse asset, got %s and %s", a1.LocalID, a2.LocalID)
	}
	if downloads != 1 {
		t.Errorf("Expected 1 download, got %d", downloads)
	}
}

func TestResolverResolveProbesExtension(t *testing.T) {
	var probed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "HEAD" {
			probed = true
			w.Header().Set("Content-Type", "image/png; charset=binary")
			return
		}
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	assets := newFakeAssetRepository()
	resolver := newTestResolver(assets)

	ref := ImageReference{SourceURL: server.URL + "/render/12345"}

	asset, err := resolver.Resolve(context.Background(), ref, "doc-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !probed {
		t.Error("Expected HEAD probe for extensionless URL")
	}
	if !strings.HasSuffix(asset.LocalURL, "/12345.png") {
		t.Errorf("Expected probed png extension, got %s", asset.LocalURL)
	}
}

func TestResolverResolveFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	assets := newFakeAssetRepository()
	resolver := newTestResolver(assets)

	_, err := resolver.Resolve(context.Background(), ImageReference{SourceURL: server.URL + "/missing.jpg"}, "doc-1")
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var importErr *ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("Expected ImportError, got %T", err)
	}
	if importErr.Reason != ReasonFetchFailed {
		t.Errorf("Expected fetch_failed reason, got %s", importErr.Reason)
	}
}

func TestResolverResolveStoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	assets := newFakeAssetRepository()
	assets.storeErr = errors.New("disk full")
	resolver := newTestResolver(assets)

	_, err := resolver.Resolve(context.Background(), ImageReference{SourceURL: server.URL + "/pic.jpg"}, "doc-1")
	if err == nil {
		t.Fatal("Expected error when store fails")
	}

	var importErr *ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("Expected ImportError, got %T", err)
	}
	if importErr.Reason != ReasonStoreFailed {
		t.Errorf("Expected store_failed reason, got %s", importErr.Reason)
	}
}

func TestResolverResolveMalformedURL(t *testing.T) {
	assets := newFakeAssetRepository()
	resolver := newTestResolver(assets)

	_, err := resolver.Resolve(context.Background(), ImageReference{SourceURL: "not-a-url"}, "doc-1")
	if err == nil {
		t.Fatal("Expected error for malformed URL")
	}

	var importErr *ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("Expected ImportError, got %T", err)
	}
	if importErr.Reason != ReasonMalformedReference {
		t.Errorf("Expected malformed_reference reason, got %s", importErr.Reason)
	}
}

func TestStripQueryParameters(t *testing.T) {
	stripped, err := stripQueryParameters("https://cdn.example.com/a/b.jpg?w=100&token=abc#frag")
	if err != nil {
		t.Fatalf("stripQueryParameters failed: %v", err)
	}
	if stripped != "https://cdn.example.com/a/b.jpg" {
		t.Errorf("Unexpected stripped URL: %s", stripped)
	}
}
