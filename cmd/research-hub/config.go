// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-hub/internal/secrets"
	"github.com/pdiddy/research-hub/pkg/types"
)

// setDefaults registers every config key so that environment variables are
// picked up by Unmarshal even when no config file mentions the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("search.timeout", 20*time.Second)
	v.SetDefault("search.http_timeout", 15*time.Second)
	v.SetDefault("search.user_agent", "research-hub/"+version)
	v.SetDefault("search.max_retries", 2)
	v.SetDefault("search.serpapi_api_key", "")
	v.SetDefault("search.github_token", "")
	v.SetDefault("search.semantic_scholar_api_key", "")

	v.SetDefault("results.required", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// loadConfig decodes v into a HubConfig and fills credentials missing from
// config and environment with values from the secrets store.
func loadConfig(v *viper.Viper, store secrets.Store) (types.HubConfig, error) {
	var cfg types.HubConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Search.SerpAPIKey = store.Get(secrets.SerpAPIKey, cfg.Search.SerpAPIKey)
	cfg.Search.GitHubToken = store.Get(secrets.GitHubToken, cfg.Search.GitHubToken)
	cfg.Search.SemanticScholarAPIKey = store.Get(secrets.SemanticScholarAPIKey, cfg.Search.SemanticScholarAPIKey)
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with credentials redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
