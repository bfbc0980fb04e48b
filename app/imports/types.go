package imports

// ImageReference is one externally hosted image found in a document body.
// Extracted verbatim; lives for a single rewrite pass.
type ImageReference struct {
	RawTag    string
	SourceURL string
	AltText   string
}

// ImportedAsset is the local identity of a downloaded image.
type ImportedAsset struct {
	LocalID   string
	LocalURL  string
	OriginURL string
	AltText   string
}

const (
	ModeBackground = "background"
	ModeImmediate  = "immediate"
)

// Config is the import behavior read from the settings store. Read-only to
// the pipeline.
type Config struct {
	AutoImport           bool
	PostTypes            []string
	ProcessingMode       string
	FirstImageAsFeatured bool
}
