package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// FeedImporter pulls an RSS or Atom feed and ingests its entries as draft
// documents. Entries that carry only a summary get their full article
// fetched and extracted.
type FeedImporter struct {
	ingestor   *Ingestor
	httpClient *http.Client
	userAgent  string
	parser     *gofeed.Parser
}

func NewFeedImporter(ingestor *Ingestor, httpClient *http.Client, userAgent string) *FeedImporter {
	return &FeedImporter{
		ingestor:   ingestor,
		httpClient: httpClient,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
	}
}

// Run ingests the feed at feedURL. Entries take the given status, draft when
// empty; unknown values normalize during ingestion.
func (f *FeedImporter) Run(ctx context.Context, feedURL, status string) (*Report, error) {
	if status == "" {
		status = "draft"
	}

	data, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := f.parser.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	subs := make([]Submission, 0, len(feed.Items))
	for _, item := range feed.Items {
		subs = append(subs, f.toSubmission(ctx, item, status))
	}

	slog.Debug("Feed parsed", "url", feedURL, "title", feed.Title, "entries", len(subs))

	return f.ingestor.Run(ctx, subs), nil
}

func (f *FeedImporter) toSubmission(ctx context.Context, item *gofeed.Item, status string) Submission {
	sub := Submission{
		ExternalID: item.GUID,
		Title:      item.Title,
		Content:    item.Content,
		Excerpt:    item.Description,
		Status:     status,
		PostType:   "post",
	}
	if sub.ExternalID == "" {
		sub.ExternalID = item.Link
	}

	if item.PublishedParsed != nil {
		sub.Date = item.PublishedParsed.Format(time.RFC3339)
	}

	if item.Categories != nil {
		sub.Categories = item.Categories
	}

	// Summary-only entries: pull the linked page and extract the article
	// body. Extraction failure falls back to the summary.
	if sub.Content == "" && item.Link != "" {
		if content, err := f.extractArticle(ctx, item.Link); err != nil {
			slog.Warn("Article extraction failed, using summary", "link", item.Link, "error", err)
			sub.Content = item.Description
		} else {
			sub.Content = content
		}
	}

	return sub
}

func (f *FeedImporter) extractArticle(ctx context.Context, link string) (string, error) {
	data, err := f.fetch(ctx, link)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	if article.Content == "" {
		return "", fmt.Errorf("no content extracted")
	}

	return article.Content, nil
}

func (f *FeedImporter) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
