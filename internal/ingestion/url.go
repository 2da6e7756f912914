// Package ingestion turns job posting sources (URLs, uploaded files)
// into cleaned plain text ready for indexing and extraction.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/cv-optimizer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// browserTimeout bounds headless rendering of a single page.
const browserTimeout = 30 * time.Second

// IngestFromURL fetches a job posting, extracts its main text and
// cleans it. When useBrowser is set and the plain fetch yields too
// little content, the page is re-fetched through a headless browser; a
// browser failure falls back to whatever the plain fetch produced.
func IngestFromURL(ctx context.Context, urlStr string, useBrowser bool) (string, *Metadata, error) {
	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	textContent, err := fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		if browserHTML, browserErr := fetch.WithBrowser(ctx, urlStr, browserTimeout); browserErr == nil {
			if rendered, extractErr := fetch.ExtractMainText(browserHTML, fetch.JobPostingSelectors()); extractErr == nil {
				textContent = rendered
			}
		}
	}

	cleanedText := CleanText(textContent)
	return cleanedText, NewMetadata(cleanedText, urlStr), nil
}
