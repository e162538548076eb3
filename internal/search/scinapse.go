// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/research-hub/internal/httputil"
	"github.com/pdiddy/research-hub/pkg/types"
)

// scinapseAPIBase is the Scinapse paper search endpoint. Declared as a var
// so tests can substitute an httptest server.
var scinapseAPIBase = "https://api.scinapse.io/search"

const (
	ScinapseName = "scinapse"

	maxScinapseBody = 8 << 20
)

// ScinapseBackend queries the Scinapse paper index. Its pass-through
// payload is the provider body unchanged; records are read best effort from
// a top-level data list of {title} objects.
type ScinapseBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the backend identifier.
func (b *ScinapseBackend) Name() string { return ScinapseName }

// Search queries Scinapse.
func (b *ScinapseBackend) Search(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(b.Name(), query)
	if err != nil {
		return Result{}, err
	}

	req, err := httputil.NewGet(ctx, scinapseAPIBase, url.Values{"query": {q}}, b.UserAgent, nil)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, statusError(b.Name(), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScinapseBody))
	if err != nil {
		return Result{}, transportError(b.Name(), err)
	}
	if !json.Valid(body) {
		return Result{}, decodeError(b.Name(), errors.New("body is not valid JSON"))
	}

	return Result{Payload: json.RawMessage(body), Records: scinapseRecords(body)}, nil
}

// scinapseRecords extracts titles from {"data":[{"title":...}]}. Any other
// shape yields no records.
func scinapseRecords(body []byte) []types.SearchResult {
	var sr struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	records := []types.SearchResult{}
	if err := json.Unmarshal(body, &sr); err != nil {
		return records
	}
	for _, paper := range sr.Data {
		r := types.SearchResult{Title: paper.Title, Source: ScinapseName}
		records = append(records, r.WithDefaults())
	}
	return records
}
