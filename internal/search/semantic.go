// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-hub/internal/httputil"
	"github.com/pdiddy/research-hub/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	SemanticScholarName = "semantic_scholar"
	semanticFields      = "title,authors,url,abstract,year"
)

// SemanticScholarBackend queries the Semantic Scholar paper search API.
// The pass-through payload is the provider's data list, unchanged.
type SemanticScholarBackend struct {
	Client     *http.Client
	UserAgent  string
	APIKey     string
	MaxRetries int
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return SemanticScholarName }

// Search queries Semantic Scholar sorted by publication year.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(b.Name(), query)
	if err != nil {
		return Result{}, err
	}

	params := url.Values{
		"query":  {q},
		"fields": {semanticFields},
		"sort":   {"year"},
	}
	header := http.Header{}
	if b.APIKey != "" {
		header.Set("x-api-key", b.APIKey)
	}

	req, err := httputil.NewGet(ctx, semanticAPIBase, params, b.UserAgent, header)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.MaxRetries)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, statusError(b.Name(), resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Result{}, decodeError(b.Name(), err)
	}

	payload := make([]json.RawMessage, 0, len(sr.Data))
	records := make([]types.SearchResult, 0, len(sr.Data))
	for _, raw := range sr.Data {
		var paper semanticPaper
		if err := json.Unmarshal(raw, &paper); err != nil {
			return Result{}, decodeError(b.Name(), err)
		}
		payload = append(payload, raw)
		records = append(records, paper.record())
	}
	return Result{Payload: payload, Records: records}, nil
}

func (p semanticPaper) record() types.SearchResult {
	r := types.SearchResult{
		Title:  strings.TrimSpace(p.Title),
		URL:    p.URL,
		Source: SemanticScholarName,
	}
	if p.Abstract != nil {
		r.Summary = strings.TrimSpace(*p.Abstract)
	}
	if p.Year != nil {
		r.Published = strconv.Itoa(*p.Year)
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			r.Authors = append(r.Authors, a.Name)
		}
	}
	return r.WithDefaults()
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Data   []json.RawMessage `json:"data"`
}

type semanticPaper struct {
	PaperID  string           `json:"paperId"`
	Title    string           `json:"title"`
	URL      string           `json:"url"`
	Abstract *string          `json:"abstract"`
	Year     *int             `json:"year"`
	Authors  []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID *string `json:"authorId"`
	Name     string  `json:"name"`
}
