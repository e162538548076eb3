// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-hub/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <provider> <query>...",
	Short: "Query one source and print its results as JSON",
	Long: `search runs a single source adapter and prints what the matching
HTTP route would return. Providers: semantic_scholar, github, arxiv, scinapse,
google_scholar. With --records the normalized result records are printed
instead of the provider's own shape.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Log, os.Stderr)

		client := &http.Client{Timeout: cfg.Search.HTTPConfig.Timeout}
		providers := search.NewProviders(client, cfg.Search)

		name := args[0]
		p, ok := providers[name]
		if !ok {
			names := make([]string, 0, len(providers))
			for n := range providers {
				names = append(names, n)
			}
			slices.Sort(names)
			return fmt.Errorf("unknown provider %q (one of %s)", name, strings.Join(names, ", "))
		}

		ctx := log.WithContext(cmd.Context())
		if cfg.Search.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
			defer cancel()
		}

		res, err := p.Search(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		var out any = res.Payload
		if records, _ := cmd.Flags().GetBool("records"); records {
			out = res.Records
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	searchCmd.Flags().Bool("records", false, "print normalized records instead of the provider payload")
	rootCmd.AddCommand(searchCmd)
}
