package imports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/avelichko/syncpress/app/database"
)

const probeTimeout = 10 * time.Second

// probeUserAgent mimics a browser; some image hosts answer probes from
// generic clients with HTML error pages.
const probeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var mimeToExtension = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

var extensionToMime = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// Resolver turns a remote image reference into a locally stored asset,
// reusing an existing asset when the query-stripped origin URL was already
// imported.
type Resolver struct {
	assets       database.AssetRepository
	httpClient   *http.Client
	userAgent    string
	fetchTimeout time.Duration
}

func NewResolver(assets database.AssetRepository, httpClient *http.Client, userAgent string, fetchTimeout time.Duration) *Resolver {
	return &Resolver{
		assets:       assets,
		httpClient:   httpClient,
		userAgent:    userAgent,
		fetchTimeout: fetchTimeout,
	}
}

func (r *Resolver) Resolve(ctx context.Context, ref ImageReference, ownerDocumentID string) (*ImportedAsset, error) {
	originURL, err := stripQueryParameters(ref.SourceURL)
	if err != nil {
		return nil, &ImportError{Reason: ReasonMalformedReference, URL: ref.SourceURL, Err: err}
	}

	// Dedup lookup keyed on the query-stripped URL. A hit means no network
	// call at all.
	if existingID, err := r.assets.FindByOriginURL(originURL); err != nil {
		return nil, &ImportError{Reason: ReasonStoreFailed, URL: ref.SourceURL, Err: err}
	} else if existingID != "" {
		localURL, err := r.assets.AssetURL(existingID)
		if err != nil {
			return nil, &ImportError{Reason: ReasonStoreFailed, URL: ref.SourceURL, Err: err}
		}
		return &ImportedAsset{
			LocalID:   existingID,
			LocalURL:  localURL,
			OriginURL: originURL,
			AltText:   ref.AltText,
		}, nil
	}

	filename := path.Base(originURL)
	if filename == "" || filename == "." || filename == "/" || strings.Contains(filename, ":") {
		filename = "image"
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = r.probeExtension(ctx, ref.SourceURL)
		filename = filename + "." + ext
	}

	tmpPath, err := r.Download(ctx, ref.SourceURL)
	if err != nil {
		return nil, &ImportError{Reason: ReasonFetchFailed, URL: ref.SourceURL, Err: err}
	}
	defer os.Remove(tmpPath)

	assetID, err := r.assets.StoreFromTemp(tmpPath, filename, extensionToMime[strings.ToLower(ext)], ownerDocumentID)
	if err != nil {
		return nil, &ImportError{Reason: ReasonStoreFailed, URL: ref.SourceURL, Err: err}
	}

	if err := r.assets.SetOriginURL(assetID, originURL); err != nil {
		return nil, &ImportError{Reason: ReasonStoreFailed, URL: ref.SourceURL, Err: err}
	}
	if ref.AltText != "" {
		if err := r.assets.SetAltText(assetID, ref.AltText); err != nil {
			slog.Warn("Failed to set asset alt text", "asset", assetID, "error", err)
		}
	}

	localURL, err := r.assets.AssetURL(assetID)
	if err != nil {
		return nil, &ImportError{Reason: ReasonStoreFailed, URL: ref.SourceURL, Err: err}
	}

	slog.Debug("Image imported", "origin_url", originURL, "asset", assetID, "filename", filename)

	return &ImportedAsset{
		LocalID:   assetID,
		LocalURL:  localURL,
		OriginURL: originURL,
		AltText:   ref.AltText,
	}, nil
}

// Download fetches the image into a temp file and returns its path. The
// caller owns the file. A fast-path query hint is appended for origins that
// render on demand.
func (r *Resolver) Download(ctx context.Context, sourceURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", withFastHint(sourceURL), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	tmp, err := os.CreateTemp("", "syncpress-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), nil
}

// probeExtension issues a HEAD request against the original URL and maps the
// content type to a known extension. Unresolvable types default to jpg.
func (r *Resolver) probeExtension(ctx context.Context, sourceURL string) string {
	timeoutCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "HEAD", sourceURL, nil)
	if err != nil {
		return "jpg"
	}

	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "jpg"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "jpg"
	}

	contentType := resp.Header.Get("Content-Type")
	mimeType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if ext, ok := mimeToExtension[strings.ToLower(mimeType)]; ok {
		return ext
	}

	return "jpg"
}

// stripQueryParameters reduces a URL to scheme://host[:port]path. This
// normalized form is the dedup key.
func stripQueryParameters(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("URL has no scheme or host: %s", rawURL)
	}

	return parsed.Scheme + "://" + parsed.Host + parsed.Path, nil
}

func withFastHint(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	query.Set("fast", "1")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
