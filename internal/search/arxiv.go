// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-hub/internal/httputil"
	"github.com/pdiddy/research-hub/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	ArxivName = "arxiv"

	// ArxivMaxResults caps the entries requested from and returned by arXiv.
	ArxivMaxResults = 10
)

// ArxivBackend queries the arXiv Atom API for the most recent submissions.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return ArxivName }

// Search queries arXiv. A non-200 response yields an empty list rather than
// an error; a body that is not well-formed XML is a decode error.
func (b *ArxivBackend) Search(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(b.Name(), query)
	if err != nil {
		return Result{}, err
	}

	params := url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(ArxivMaxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := httputil.NewGet(ctx, arxivAPIBase, params, b.UserAgent, nil)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Payload: []types.Preprint{}, Records: []types.SearchResult{}}, nil
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Result{}, decodeError(b.Name(), err)
	}

	entries := feed.Entries
	if len(entries) > ArxivMaxResults {
		entries = entries[:ArxivMaxResults]
	}

	preprints := make([]types.Preprint, 0, len(entries))
	records := make([]types.SearchResult, 0, len(entries))
	for _, entry := range entries {
		p := types.Preprint{
			Title:     strings.TrimSpace(entry.Title),
			Summary:   strings.TrimSpace(entry.Summary),
			URL:       strings.TrimSpace(entry.ID),
			Published: strings.TrimSpace(entry.Published),
		}
		preprints = append(preprints, p)

		r := types.SearchResult{
			Title:     collapseSpace(p.Title),
			URL:       p.URL,
			Summary:   collapseSpace(p.Summary),
			Published: p.Published,
			Source:    ArxivName,
		}
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				r.Authors = append(r.Authors, name)
			}
		}
		records = append(records, r.WithDefaults())
	}
	return Result{Payload: preprints, Records: records}, nil
}

// collapseSpace folds the hard line wraps arXiv puts in titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures. Elements are matched by local name, so the
// Atom namespace need not be spelled out.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
