package imports

import (
	"regexp"
	"strings"
)

// Document bodies contain malformed markup; the scanner skips what it
// cannot match rather than fail.
var (
	imgTagPattern  = regexp.MustCompile(`(?i)<img[^>]+src=['"]([^'"]+)['"][^>]*>`)
	altAttrPattern = regexp.MustCompile(`(?i)alt=['"]([^'"]*)['"]`)
)

// Scanner extracts image references whose source URL matches the configured
// origin prefix.
type Scanner struct {
	originPrefix string
}

func NewScanner(originPrefix string) *Scanner {
	return &Scanner{originPrefix: originPrefix}
}

func (s *Scanner) Run(body string) []ImageReference {
	if s.originPrefix == "" {
		return nil
	}

	matches := imgTagPattern.FindAllStringSubmatch(body, -1)
	if matches == nil {
		return nil
	}

	var refs []ImageReference
	for _, match := range matches {
		rawTag := match[0]
		sourceURL := match[1]

		if !strings.HasPrefix(sourceURL, s.originPrefix) {
			continue
		}

		altText := ""
		if altMatch := altAttrPattern.FindStringSubmatch(rawTag); altMatch != nil {
			altText = altMatch[1]
		}

		refs = append(refs, ImageReference{
			RawTag:    rawTag,
			SourceURL: sourceURL,
			AltText:   altText,
		})
	}

	return refs
}
