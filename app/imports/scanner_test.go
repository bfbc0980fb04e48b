package imports

import (
	"testing"
)

func TestScannerRun(t *testing.T) {
	scanner := NewScanner("https://cdn.example.com/")

	body := `<p>Intro</p>
<img src="https://cdn.example.com/photos/one.jpg" alt="First photo">
<img class="wide" src='https://cdn.example.com/photos/two.png'>
<img src="https://other.example.org/three.gif" alt="elsewhere">`

	refs := scanner.Run(body)

	if len(refs) != 2 {
		t.Fatalf("Expected 2 references, got %d", len(refs))
	}

	if refs[0].SourceURL != "https://cdn.example.com/photos/one.jpg" {
		t.Errorf("Unexpected first source URL: %s", refs[0].SourceURL)
	}
	if refs[0].AltText != "First photo" {
		t.Errorf("Unexpected alt text: %q", refs[0].AltText)
	}
	if refs[1].SourceURL != "https://cdn.example.com/photos/two.png" {
		t.Errorf("Unexpected second source URL: %s", refs[1].SourceURL)
	}
	if refs[1].AltText != "" {
		t.Errorf("Expected empty alt text, got %q", refs[1].AltText)
	}
}

func TestScannerRunCaseInsensitive(t *testing.T) {
	scanner := NewScanner("https://cdn.example.com/")

	refs := scanner.Run(`<IMG SRC="https://cdn.example.com/a.jpg" ALT="Upper">`)

	if len(refs) != 1 {
		t.Fatalf("Expected 1 reference, got %d", len(refs))
	}
	if refs[0].AltText != "Upper" {
		t.Errorf("Unexpected alt text: %q", refs[0].AltText)
	}
}

func TestScannerRunNoMatches(t *testing.T) {
	scanner := NewScanner("https://cdn.example.com/")

	if refs := scanner.Run("<p>No images here</p>"); refs != nil {
		t.Errorf("Expected nil references, got %v", refs)
	}

	if refs := scanner.Run(`<img src="https://elsewhere.test/a.jpg">`); refs != nil {
		t.Errorf("Expected nil for out-of-scope image, got %v", refs)
	}
}

func TestScannerRunEmptyOrigin(t *testing.T) {
	scanner := NewScanner("")

	if refs := scanner.Run(`<img src="https://cdn.example.com/a.jpg">`); refs != nil {
		t.Errorf("Expected nil references with empty origin, got %v", refs)
	}
}

func TestScannerRunMalformedTags(t *testing.T) {
	scanner := NewScanner("https://cdn.example.com/")

	body := `<img src=https://cdn.example.com/unquoted.jpg>
<img alt="no source">
<img src="https://cdn.example.com/good.jpg">`

	refs := scanner.Run(body)

	if len(refs) != 1 {
		t.Fatalf("Expected 1 reference, got %d", len(refs))
	}
	if refs[0].SourceURL != "https://cdn.example.com/good.jpg" {
		t.Errorf("Unexpected source URL: %s", refs[0].SourceURL)
	}
}
