// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for research-hub: the
// normalized display record produced by every provider adapter, the
// pass-through item shapes served by the per-provider endpoints, and the
// process configuration.
package types

// Placeholder values used when a provider omits a field. Rendered output
// never carries an empty title or link.
const (
	UnknownTitle       = "unknown title"
	UnknownURL         = "#"
	SummaryUnavailable = "summary unavailable"
	DateUnavailable    = "date unavailable"
	LinkUnavailable    = "link unavailable"
)

// SearchResult is the display-oriented record one adapter builds from one
// provider response item. It lives for a single request.
type SearchResult struct {
	// Title is the item title, or UnknownTitle.
	Title string `json:"title" yaml:"title"`

	// URL links to the item, or UnknownURL.
	URL string `json:"url" yaml:"url"`

	// Summary is the abstract, snippet, or description.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the publication date or year as the provider reports it.
	Published string `json:"published" yaml:"published"`

	// Authors lists author names in provider order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Source identifies the provider that produced the record (e.g. "arxiv").
	Source string `json:"source" yaml:"source"`

	// Extra holds provider-specific display fields such as "stars".
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// WithDefaults returns a copy of r with every empty text field replaced
// by its placeholder.
func (r SearchResult) WithDefaults() SearchResult {
	r.Title = orDefault(r.Title, UnknownTitle)
	r.URL = orDefault(r.URL, UnknownURL)
	r.Summary = orDefault(r.Summary, SummaryUnavailable)
	r.Published = orDefault(r.Published, DateUnavailable)
	return r
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Preprint is one arXiv Atom entry.
type Preprint struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Published string `json:"published"`
}

// ScholarArticle is one Google Scholar organic result.
type ScholarArticle struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}
