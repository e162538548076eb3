// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render builds the combined results page: it loads the results
// template, renders one escaped list fragment per provider, and substitutes
// the fragments for the template's placeholder tokens.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-hub/internal/search"
	"github.com/pdiddy/research-hub/pkg/types"
)

const (
	IndexFile   = "index.html"
	ResultsFile = "results.html"

	// QueryToken is replaced with the escaped query text.
	QueryToken = "{{query}}"
)

// sections lists providers in page order with their placeholder tokens.
var sections = []struct {
	provider string
	token    string
}{
	{search.SemanticScholarName, "{{semantic_results}}"},
	{search.GitHubName, "{{github_results}}"},
	{search.ArxivName, "{{arxiv_results}}"},
	{search.ScinapseName, "{{scinapse_results}}"},
	{search.GoogleScholarName, "{{google_scholar_results}}"},
}

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`
{{define "semantic_scholar"}}{{range .}}<li><a href='{{.URL}}'><strong>{{.Title}}</strong></a> - {{join .Authors ", "}} ({{.Published}})<br><strong>Summary:</strong> {{.Summary}}</li>{{end}}{{end}}
{{define "github"}}{{range .}}<li><a href='{{.URL}}'>{{.Title}}</a> - ⭐ {{index .Extra "stars"}}</li>{{end}}{{end}}
{{define "arxiv"}}{{range .}}<li><a href='{{.URL}}'><strong>{{.Title}}</strong></a> <em>{{.Published}}</em><br>{{.Summary}}</li>{{end}}{{end}}
{{define "scinapse"}}{{range .}}<li>{{.Title}}</li>{{end}}{{end}}
{{define "google_scholar"}}{{range .}}<li><a href='{{.URL}}'><strong>{{.Title}}</strong></a><br><em>{{.Published}}</em><br><strong>Summary:</strong> {{.Summary}}</li>{{end}}{{end}}
{{define "notice"}}<li class='provider-error'>{{.Provider}} unavailable: {{.Message}}</li>{{end}}
`))

// Token returns the placeholder token for provider, or "" if the page has
// no section for it.
func Token(provider string) string {
	for _, s := range sections {
		if s.provider == provider {
			return s.token
		}
	}
	return ""
}

// Providers returns, in page order, the providers whose placeholder token
// appears in tmpl. Only these are queried for the page.
func Providers(tmpl string) []string {
	var names []string
	for _, s := range sections {
		if strings.Contains(tmpl, s.token) {
			names = append(names, s.provider)
		}
	}
	return names
}

// Fragment renders records as the provider's list items. Every interpolated
// value is HTML-escaped.
func Fragment(provider string, records []types.SearchResult) (string, error) {
	if fragments.Lookup(provider) == nil {
		return "", fmt.Errorf("no fragment template for provider %q", provider)
	}
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, provider, records); err != nil {
		return "", fmt.Errorf("rendering %s fragment: %w", provider, err)
	}
	return buf.String(), nil
}

// Notice renders the single list item shown in place of a failed
// provider's results.
func Notice(e *search.ProviderError) (string, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, "notice", e); err != nil {
		return "", fmt.Errorf("rendering notice: %w", err)
	}
	return buf.String(), nil
}

// Document substitutes every placeholder in tmpl in a single pass: each
// provider token gets that provider's fragment (or failure notice) and
// QueryToken gets the escaped query. Tokens with no outcome are removed.
// Text inserted by one substitution is never re-scanned for tokens.
func Document(tmpl, query string, outcomes []search.Outcome) (string, error) {
	byProvider := make(map[string]search.Outcome, len(outcomes))
	for _, o := range outcomes {
		byProvider[o.Provider] = o
	}

	pairs := []string{QueryToken, template.HTMLEscapeString(query)}
	for _, s := range sections {
		o, ok := byProvider[s.provider]
		if !ok {
			pairs = append(pairs, s.token, "")
			continue
		}

		var html string
		var err error
		if o.Failed() {
			html, err = Notice(o.Err)
		} else {
			html, err = Fragment(s.provider, o.Result.Records)
		}
		if err != nil {
			return "", err
		}
		pairs = append(pairs, s.token, html)
	}

	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}

// LoadResultsTemplate reads results.html from dir. It is read on every call
// so a missing or edited file affects only the requests that need it.
func LoadResultsTemplate(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	if err != nil {
		return "", fmt.Errorf("loading results template: %w", err)
	}
	return string(data), nil
}

// LoadIndex reads the landing page from dir.
func LoadIndex(dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("loading landing page: %w", err)
	}
	return data, nil
}
