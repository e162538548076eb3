// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/research-hub/internal/httputil"
	"github.com/pdiddy/research-hub/pkg/types"
)

// githubAPIBase is the GitHub repository search endpoint. Declared as a var
// so tests can substitute an httptest server.
var githubAPIBase = "https://api.github.com/search/repositories"

const (
	GitHubName       = "github"
	githubAPIVersion = "2022-11-28"
)

// GitHubBackend searches public repositories ordered by stars.
// The pass-through payload is the provider's items list, unchanged.
type GitHubBackend struct {
	Client     *http.Client
	UserAgent  string
	Token      string
	MaxRetries int
}

// Name returns the backend identifier.
func (b *GitHubBackend) Name() string { return GitHubName }

// Search queries GitHub repository search.
func (b *GitHubBackend) Search(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(b.Name(), query)
	if err != nil {
		return Result{}, err
	}

	params := url.Values{
		"q":     {q},
		"sort":  {"stars"},
		"order": {"desc"},
	}
	header := http.Header{}
	header.Set("Accept", "application/vnd.github.v3+json")
	header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if b.Token != "" {
		header.Set("Authorization", "Bearer "+b.Token)
	}

	req, err := httputil.NewGet(ctx, githubAPIBase, params, b.UserAgent, header)
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

	var gr githubResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Result{}, decodeError(b.Name(), err)
	}

	payload := make([]json.RawMessage, 0, len(gr.Items))
	records := make([]types.SearchResult, 0, len(gr.Items))
	for _, raw := range gr.Items {
		var repo githubRepo
		if err := json.Unmarshal(raw, &repo); err != nil {
			return Result{}, decodeError(b.Name(), err)
		}
		payload = append(payload, raw)
		records = append(records, repo.record())
	}
	return Result{Payload: payload, Records: records}, nil
}

func (r githubRepo) record() types.SearchResult {
	rec := types.SearchResult{
		Title:  r.Name,
		URL:    r.HTMLURL,
		Source: GitHubName,
		Extra:  map[string]string{"stars": strconv.Itoa(r.Stars)},
	}
	if r.Description != nil {
		rec.Summary = *r.Description
	}
	if r.Owner.Login != "" {
		rec.Authors = []string{r.Owner.Login}
	}
	return rec.WithDefaults()
}

// GitHub search API JSON structures.
type githubResponse struct {
	TotalCount int               `json:"total_count"`
	Items      []json.RawMessage `json:"items"`
}

type githubRepo struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	HTMLURL     string  `json:"html_url"`
	Description *string `json:"description"`
	Stars       int     `json:"stargazers_count"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}
