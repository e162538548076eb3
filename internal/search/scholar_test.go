// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/research-hub/pkg/types"
)

// redirectTransport sends every request to target, keeping path and query.
// The SerpApi client has a fixed host, so tests swap the transport instead
// of a base URL.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func scholarClient(t *testing.T, ts *httptest.Server) *http.Client {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Transport: redirectTransport{target: u}, Timeout: 5 * time.Second}
}

const sampleScholarJSON = `{
  "search_metadata": {"status": "Success"},
  "organic_results": [
    {
      "title": "Attention Is All You Need",
      "link": "https://arxiv.org/abs/1706.03762",
      "snippet": "The dominant sequence transduction models...",
      "publication_info": {"summary": "A Vaswani, N Shazeer - Advances in neural, 2017"}
    },
    {
      "title": "Citation only"
    }
  ]
}`

func TestGoogleScholarSearch(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, sampleScholarJSON)
	}))
	defer ts.Close()

	b := &GoogleScholarBackend{Client: scholarClient(t, ts), APIKey: "serp-test-key"}
	res, err := b.Search(context.Background(), "transformers")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := captured.URL.Query()
	if q.Get("engine") != "google_scholar" {
		t.Errorf("engine = %q, want google_scholar", q.Get("engine"))
	}
	if q.Get("q") != "transformers" {
		t.Errorf("q = %q", q.Get("q"))
	}
	if q.Get("api_key") != "serp-test-key" {
		t.Errorf("api_key = %q", q.Get("api_key"))
	}

	articles := res.Payload.([]types.ScholarArticle)
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}
	want0 := types.ScholarArticle{
		Title:   "Attention Is All You Need",
		Date:    "A Vaswani, N Shazeer - Advances in neural, 2017",
		Summary: "The dominant sequence transduction models...",
		Link:    "https://arxiv.org/abs/1706.03762",
	}
	if articles[0] != want0 {
		t.Errorf("articles[0] = %+v, want %+v", articles[0], want0)
	}
	want1 := types.ScholarArticle{
		Title:   "Citation only",
		Date:    types.DateUnavailable,
		Summary: types.SummaryUnavailable,
		Link:    types.LinkUnavailable,
	}
	if articles[1] != want1 {
		t.Errorf("articles[1] = %+v, want defaults %+v", articles[1], want1)
	}

	if res.Records[1].URL != types.UnknownURL {
		t.Errorf("record URL = %q, want %q for missing link", res.Records[1].URL, types.UnknownURL)
	}
	if res.Records[0].Published != want0.Date {
		t.Errorf("record Published = %q", res.Records[0].Published)
	}
}

func TestGoogleScholarNoOrganicResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"search_metadata":{"status":"Success"}}`)
	}))
	defer ts.Close()

	b := &GoogleScholarBackend{Client: scholarClient(t, ts), APIKey: "k"}
	res, err := b.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := res.Payload.([]types.ScholarArticle); got == nil || len(got) != 0 {
		t.Errorf("payload = %#v, want empty list", got)
	}
}

func TestGoogleScholarMissingAPIKey(t *testing.T) {
	b := &GoogleScholarBackend{Client: http.DefaultClient}
	_, err := b.Search(context.Background(), "x")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindConfig {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestGoogleScholarProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid API key."}`)
	}))
	defer ts.Close()

	b := &GoogleScholarBackend{Client: scholarClient(t, ts), APIKey: "bad"}
	_, err := b.Search(context.Background(), "x")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if pe.Kind != KindStatus {
		t.Errorf("Kind = %q, want %q", pe.Kind, KindStatus)
	}
}

func TestGoogleScholarContextCancelled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	b := &GoogleScholarBackend{Client: scholarClient(t, ts), APIKey: "k"}
	_, err := b.Search(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestGoogleScholarNonJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `<html>bad gateway</html>`)
	}))
	defer ts.Close()

	b := &GoogleScholarBackend{Client: scholarClient(t, ts), APIKey: "k"}
	_, err := b.Search(context.Background(), "x")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if pe.Kind != KindDecode {
		t.Errorf("Kind = %q, want %q (message %q)", pe.Kind, KindDecode, pe.Message)
	}
}

// countingTransport counts responses and how many of their bodies were closed.
type countingTransport struct {
	base           http.RoundTripper
	opened, closed atomic.Int32
}

type countedBody struct {
	io.ReadCloser
	closed *atomic.Int32
}

func (cb countedBody) Close() error {
	cb.closed.Add(1)
	return cb.ReadCloser.Close()
}

func (ct *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := ct.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	ct.opened.Add(1)
	resp.Body = countedBody{ReadCloser: resp.Body, closed: &ct.closed}
	return resp, nil
}

func TestGoogleScholarClosesResponseBodies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleScholarJSON)
	}))
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	ct := &countingTransport{base: redirectTransport{target: u}}
	client := &http.Client{Transport: ct, Timeout: 5 * time.Second}
	b := &GoogleScholarBackend{Client: client, APIKey: "k"}

	for i := 0; i < 5; i++ {
		if _, err := b.Search(context.Background(), "q"); err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
	}
	if ct.opened.Load() != 5 || ct.closed.Load() != 5 {
		t.Errorf("responses opened=%d closed=%d, want 5 and 5", ct.opened.Load(), ct.closed.Load())
	}
	if client.Transport != ct {
		t.Error("caller's client transport was modified")
	}
}
