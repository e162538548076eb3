// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	g "github.com/serpapi/google-search-results-golang"

	"github.com/pdiddy/research-hub/pkg/types"
)

const (
	GoogleScholarName = "google_scholar"
	scholarEngine     = "google_scholar"

	// serpDecodeFailure is the message the SerpApi client returns when the
	// body is not JSON. The decoder error itself is discarded by the client.
	serpDecodeFailure = "fail to decode"
)

// GoogleScholarBackend queries Google Scholar through the SerpApi proxy.
// APIKey is required and has no built-in default.
type GoogleScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *GoogleScholarBackend) Name() string { return GoogleScholarName }

// Search queries SerpApi with engine=google_scholar and normalizes the
// organic results.
func (b *GoogleScholarBackend) Search(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(b.Name(), query)
	if err != nil {
		return Result{}, err
	}
	if b.APIKey == "" {
		return Result{}, configError(b.Name(), "SerpApi API key is not configured")
	}

	search := g.NewGoogleSearch(map[string]string{
		"engine": scholarEngine,
		"q":      q,
	}, b.APIKey)
	search.Engine = scholarEngine
	bodies := &bodyCloser{}
	search.HttpSearch = bodies.client(b.Client)

	// The SerpApi client takes no context; the call is abandoned, not
	// interrupted, when ctx ends first.
	type reply struct {
		data g.SearchResult
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		data, err := search.GetJSON()
		bodies.closeAll()
		ch <- reply{data: data, err: err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return Result{}, transportError(b.Name(), ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return Result{}, b.classify(r.err)
	}

	articles := scholarArticles(r.data)
	records := make([]types.SearchResult, 0, len(articles))
	for _, a := range articles {
		rec := types.SearchResult{
			Title:     a.Title,
			Summary:   a.Summary,
			Published: a.Date,
			Source:    GoogleScholarName,
		}
		if a.Link != types.LinkUnavailable {
			rec.URL = a.Link
		}
		records = append(records, rec.WithDefaults())
	}
	return Result{Payload: articles, Records: records}, nil
}

// classify maps SerpApi client errors onto provider error kinds. The client
// reports the provider's "error" field as a plain error.
func (b *GoogleScholarBackend) classify(err error) *ProviderError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return transportError(b.Name(), err)
	}
	if err.Error() == serpDecodeFailure {
		return decodeError(b.Name(), err)
	}
	return &ProviderError{
		Provider: b.Name(),
		Kind:     KindStatus,
		Message:  fmt.Sprintf("API request failed: %v", err),
		Err:      err,
	}
}

// bodyCloser records every response body read by the SerpApi client, which
// never closes them, so they can be closed once GetJSON returns.
type bodyCloser struct {
	base   http.RoundTripper
	mu     sync.Mutex
	bodies []io.ReadCloser
}

// client returns a copy of c whose transport records response bodies.
func (bc *bodyCloser) client(c *http.Client) *http.Client {
	var cp http.Client
	if c != nil {
		cp = *c
	}
	bc.base = cp.Transport
	if bc.base == nil {
		bc.base = http.DefaultTransport
	}
	cp.Transport = bc
	return &cp
}

func (bc *bodyCloser) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := bc.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	bc.mu.Lock()
	bc.bodies = append(bc.bodies, resp.Body)
	bc.mu.Unlock()
	return resp, nil
}

func (bc *bodyCloser) closeAll() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	for _, body := range bc.bodies {
		body.Close()
	}
	bc.bodies = nil
}

// scholarArticles extracts organic_results, filling every missing field
// with its placeholder.
func scholarArticles(data map[string]interface{}) []types.ScholarArticle {
	articles := []types.ScholarArticle{}
	organic, ok := data["organic_results"].([]interface{})
	if !ok {
		return articles
	}
	for _, item := range organic {
		res, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		a := types.ScholarArticle{
			Title:   stringField(res, "title", types.UnknownTitle),
			Summary: stringField(res, "snippet", types.SummaryUnavailable),
			Link:    stringField(res, "link", types.LinkUnavailable),
			Date:    types.DateUnavailable,
		}
		if info, ok := res["publication_info"].(map[string]interface{}); ok {
			a.Date = stringField(info, "summary", types.DateUnavailable)
		}
		articles = append(articles, a)
	}
	return articles
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
