package publish

// Submission is one document pushed by the external content source. String
// fields arrive as authored there; normalization happens during ingestion.
type Submission struct {
	ExternalID      string   `json:"external_id"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	Status          string   `json:"status"`
	PostType        string   `json:"post_type"`
	Date            string   `json:"date"`
	AuthorID        string   `json:"author_id"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
	FeaturedAssetID string   `json:"featured_asset_id"`
}

// Result is the outcome for one submission.
type Result struct {
	ExternalID string `json:"external_id"`
	DocumentID string `json:"document_id,omitempty"`
	Permalink  string `json:"permalink,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report summarizes one ingestion call.
type Report struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}
