// Package classify turns raw anchors into structured form descriptors.
package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/internal/common"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/links"
)

// DefaultCategory is assigned when no keyword from the table matches.
const DefaultCategory = "miscellaneous"

// Classifier maps anchors to form descriptors using injected rules rather
// than package-level constants, so tests can supply their own tables.
type Classifier struct {
	seedURL    *url.URL
	baseOrigin string // scheme://host of the seed
	categories []string
	extensions []string
	identifier *regexp.Regexp
}

// New builds a Classifier for one seed page. categories is the ordered
// keyword table (first match wins), extensions the lowercase document
// allowlist, identExpr the form number pattern.
func New(seedURL string, categories, extensions []string, identExpr string) (*Classifier, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed URL: %w", err)
	}
	if seed.Scheme == "" || seed.Host == "" {
		return nil, fmt.Errorf("seed URL must be absolute: %q", seedURL)
	}

	ident, err := regexp.Compile(identExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier pattern: %w", err)
	}

	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		lowered[i] = strings.ToLower(ext)
	}

	return &Classifier{
		seedURL:    seed,
		baseOrigin: fmt.Sprintf("%s://%s", seed.Scheme, seed.Host),
		categories: categories,
		extensions: lowered,
		identifier: ident,
	}, nil
}

// Classify maps one anchor to zero or one descriptor. The second return is
// false when the anchor is not a document candidate.
func (c *Classifier) Classify(a links.Anchor) (models.FormDescriptor, bool) {
	href := common.SanitizeHref(a.Href)
	if href == "" {
		return models.FormDescriptor{}, false
	}

	if !c.hasDocumentExtension(href) && !strings.Contains(strings.ToLower(a.Text), "form") {
		return models.FormDescriptor{}, false
	}

	normalized, err := c.normalize(href)
	if err != nil {
		return models.FormDescriptor{}, false
	}

	identifier := models.UnknownIdentifier
	if m := c.identifier.FindString(a.Text + href); m != "" {
		identifier = m
	}

	title := common.TruncateTitle(a.Text, models.MaxTitleLength)
	if title == "" {
		title = fmt.Sprintf("Form %s", identifier)
	}

	return models.FormDescriptor{
		Identifier: identifier,
		Title:      title,
		URL:        normalized,
		Category:   c.category(a.Text, href),
		Status:     models.StatusPending,
	}, true
}

// ClassifyAll runs Classify over a sequence of anchors, keeping discovery order.
func (c *Classifier) ClassifyAll(anchors []links.Anchor) []models.FormDescriptor {
	var forms []models.FormDescriptor
	for _, a := range anchors {
		if form, ok := c.Classify(a); ok {
			forms = append(forms, form)
		}
	}
	return forms
}

// hasDocumentExtension reports whether the href path ends in an allowed
// document extension, ignoring any query string or fragment.
func (c *Classifier) hasDocumentExtension(href string) bool {
	path := strings.ToLower(href)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range c.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// normalize resolves an href to an absolute URL. Root-relative hrefs join
// the seed's scheme+host, schemeless hrefs resolve against the seed page,
// and absolute hrefs pass through unchanged.
func (c *Classifier) normalize(href string) (string, error) {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}
	if strings.HasPrefix(href, "/") {
		return c.baseOrigin + href, nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("failed to parse href %q: %w", href, err)
	}
	return c.seedURL.ResolveReference(ref).String(), nil
}

// category scans the keyword table in order and returns the first keyword
// found in the lowercased text or href.
func (c *Classifier) category(text, href string) string {
	loweredText := strings.ToLower(text)
	loweredHref := strings.ToLower(href)
	for _, keyword := range c.categories {
		if strings.Contains(loweredText, keyword) || strings.Contains(loweredHref, keyword) {
			return keyword
		}
	}
	return DefaultCategory
}

// Dedup collapses descriptors with byte-equal normalized URLs, keeping the
// first occurrence and its insertion order. Running it on its own output is
// a no-op.
func Dedup(forms []models.FormDescriptor) []models.FormDescriptor {
	seen := make(map[string]bool, len(forms))
	unique := make([]models.FormDescriptor, 0, len(forms))
	for _, form := range forms {
		if seen[form.URL] {
			continue
		}
		seen[form.URL] = true
		unique = append(unique, form)
	}
	return unique
}
