// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-hub/internal/search"
	"github.com/pdiddy/research-hub/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search routes and the combined results page",
	Long: `serve starts the HTTP server. Each source has a JSON route
(/search_semantic, /search_github, /search_arxiv, /search_scinapse,
/search_google_scholar) taking a query parameter; /results renders
static/results.html with every source whose placeholder it contains.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Log, os.Stderr)
		if cfg.Search.SerpAPIKey == "" {
			log.Warn().Msg("no SerpApi key configured; Google Scholar requests will fail")
		}

		client := &http.Client{Timeout: cfg.Search.HTTPConfig.Timeout}
		providers := search.NewProviders(client, cfg.Search)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = log.WithContext(ctx)

		return server.New(cfg, providers, log).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().String("static-dir", "static", "directory holding index.html and results.html")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.static_dir", serveCmd.Flags().Lookup("static-dir"))

	rootCmd.AddCommand(serveCmd)
}
