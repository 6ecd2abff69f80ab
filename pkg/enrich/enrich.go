// Package enrich produces short natural-language summaries for fetched
// documents. It is an optional collaborator: failures are recorded per
// item and never affect fetch or manifest state.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
)

// Result is the enrichment output for one form.
type Result struct {
	Summary  string
	Language string // ISO-639-1, lowercase, empty when undetectable
	Keywords []string
}

// Enricher turns a fetched form and its raw content into a short summary.
// Implementations must be safe to call sequentially from the pipeline; a
// nil Enricher disables enrichment.
type Enricher interface {
	Enrich(ctx context.Context, form models.FormDescriptor, content []byte) (*Result, error)
}

const (
	summaryMaxLen  = 240
	keywordLimit   = 10
	minDetectChars = 20
)

// LocalEnricher summarizes without any external service: readability for
// HTML text extraction, lingua for language detection, and word-frequency
// keywords. Binary payloads (PDFs) fall back to the form's own metadata.
type LocalEnricher struct {
	detector lingua.LanguageDetector
}

// NewLocalEnricher builds the enricher. Tax-form pages are English or
// Spanish, so detection is restricted to those two for accuracy.
func NewLocalEnricher() *LocalEnricher {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Spanish).
		Build()
	return &LocalEnricher{detector: detector}
}

// Enrich extracts a summary from HTML content, or falls back to the form's
// title for binary payloads. Returns an error only when nothing usable
// could be extracted.
func (e *LocalEnricher) Enrich(ctx context.Context, form models.FormDescriptor, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := ""
	if looksLikeHTML(content) {
		text = e.extractText(form.URL, content)
	}
	if text == "" {
		// Binary payload or empty extraction: summarize from metadata.
		text = strings.TrimSpace(fmt.Sprintf("%s %s", form.Identifier, form.Title))
	}
	if text == "" {
		return nil, fmt.Errorf("no extractable text for %s", form.URL)
	}

	return &Result{
		Summary:  excerpt(text, summaryMaxLen),
		Language: e.detectLanguage(text),
		Keywords: TopKeywords(WordFrequency(text), keywordLimit),
	}, nil
}

// extractText runs readability over HTML and returns the article text,
// or empty on any failure (the caller falls back to metadata).
func (e *LocalEnricher) extractText(rawURL string, content []byte) string {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(content), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func (e *LocalEnricher) detectLanguage(text string) string {
	if len(text) < minDetectChars {
		return ""
	}
	lang, ok := e.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// looksLikeHTML sniffs the payload prefix for markup.
func looksLikeHTML(content []byte) bool {
	prefix := bytes.ToLower(bytes.TrimSpace(content))
	if len(prefix) > 256 {
		prefix = prefix[:256]
	}
	return bytes.HasPrefix(prefix, []byte("<!doctype html")) ||
		bytes.HasPrefix(prefix, []byte("<html")) ||
		bytes.Contains(prefix, []byte("<head")) ||
		bytes.Contains(prefix, []byte("<body"))
}

// excerpt returns the leading sentences of text up to max characters,
// cutting at a sentence boundary when one exists.
func excerpt(text string, max int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) <= max {
		return collapsed
	}

	cut := collapsed[:max]
	if i := strings.LastIndexAny(cut, ".!?"); i > max/2 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i]
	}
	return cut
}
