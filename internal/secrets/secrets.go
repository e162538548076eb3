// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files. Each file in the directory represents one secret: the filename is
// the key name and the file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key file names understood by research-hub.
const (
	SerpAPIKey            = "serpapi-api-key"
	GitHubToken           = "github-token"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
)

// Store maps secret names to values.
type Store map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty Store. Dotfiles, subdirectories, and empty files are
// skipped; an unreadable file is reported in the returned error only when
// nothing else could be read.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Store{}
	var firstErr error
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("reading secret %s: %w", name, err)
			}
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}

	if len(s) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return s, nil
}

// Get returns explicit when it is set, otherwise the stored value for name.
// Configured values always win over secret files.
func (s Store) Get(name, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[name]
}

// Names returns the loaded secret names in sorted order.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
