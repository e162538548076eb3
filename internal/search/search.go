// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries external research providers (Semantic Scholar,
// GitHub, arXiv, Scinapse, Google Scholar) and normalizes their responses
// into display records.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-hub/pkg/types"
)

// Provider searches a single external service. Each adapter (arXiv,
// Semantic Scholar, ...) implements this interface.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (Result, error)
}

// Result is a successful provider response.
type Result struct {
	// Payload is the body served by the provider's pass-through endpoint.
	// It is always JSON-encodable and never nil for list-shaped providers.
	Payload any

	// Records are the normalized display records, defaults applied.
	Records []types.SearchResult
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
	KindConfig    ErrorKind = "config"
)

// ProviderError is the single failure type returned by every adapter.
type ProviderError struct {
	Provider string
	Kind     ErrorKind

	// Status is the provider HTTP status for KindStatus errors.
	Status int

	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func transportError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindTransport, Message: fmt.Sprintf("request failed: %v", err), Err: err}
}

func statusError(provider string, code int) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindStatus, Status: code,
		Message: fmt.Sprintf("API request failed with status %d", code)}
}

func decodeError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindDecode, Message: fmt.Sprintf("parsing response: %v", err), Err: err}
}

func configError(provider, msg string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindConfig, Message: msg}
}

// AsProviderError returns err as a *ProviderError, wrapping foreign errors
// as transport failures of provider.
func AsProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return transportError(provider, err)
}

// checkQuery rejects queries with no searchable text.
func checkQuery(provider, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", configError(provider, "query is empty")
	}
	return q, nil
}

// Outcome is the result of one provider call within an aggregation.
// Exactly one of Result and Err is meaningful.
type Outcome struct {
	Provider string
	Result   Result
	Err      *ProviderError
	Elapsed  time.Duration
}

// Failed reports whether the provider call failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Aggregate runs every provider concurrently and waits at most timeout
// (no bound when timeout is zero). Outcomes are returned in provider order
// regardless of completion order; one provider failing never stops the
// others.
func Aggregate(ctx context.Context, providers []Provider, query string, timeout time.Duration) []Outcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	log := zerolog.Ctx(ctx)

	outcomes := make([]Outcome, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			start := time.Now()
			res, err := p.Search(ctx, query)
			o := Outcome{Provider: p.Name(), Elapsed: time.Since(start)}
			if err != nil {
				o.Err = AsProviderError(p.Name(), err)
				log.Warn().
					Str("provider", p.Name()).
					Str("kind", string(o.Err.Kind)).
					Dur("elapsed", o.Elapsed).
					Msg(o.Err.Message)
			} else {
				o.Result = res
				log.Debug().
					Str("provider", p.Name()).
					Int("records", len(res.Records)).
					Dur("elapsed", o.Elapsed).
					Msg("provider search complete")
			}
			outcomes[i] = o
			return nil
		})
	}
	// Failures are recorded per outcome; no goroutine returns an error.
	_ = g.Wait()
	return outcomes
}

// NewProviders builds all adapters from cfg, keyed by provider name.
func NewProviders(client *http.Client, cfg types.SearchConfig) map[string]Provider {
	ua := cfg.UserAgent
	return map[string]Provider{
		SemanticScholarName: &SemanticScholarBackend{Client: client, UserAgent: ua, APIKey: cfg.SemanticScholarAPIKey, MaxRetries: cfg.MaxRetries},
		GitHubName:          &GitHubBackend{Client: client, UserAgent: ua, Token: cfg.GitHubToken, MaxRetries: cfg.MaxRetries},
		ArxivName:           &ArxivBackend{Client: client, UserAgent: ua},
		ScinapseName:        &ScinapseBackend{Client: client, UserAgent: ua},
		GoogleScholarName:   &GoogleScholarBackend{Client: client, APIKey: cfg.SerpAPIKey},
	}
}
