// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-hub server and CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-hub/internal/secrets"
	"github.com/pdiddy/research-hub/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	envPrefix  = "RESEARCH_HUB"
	secretsDir = ".secrets/"
)

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the research-hub CLI.
var rootCmd = &cobra.Command{
	Use:   "research-hub",
	Short: "Search several research sources from one page",
	Long: `research-hub queries Semantic Scholar, GitHub, arXiv, Scinapse, and Google
Scholar (through SerpApi) for a single free-text query. The serve command exposes
one JSON route per source plus a combined HTML results page; the search command
runs a single source from the terminal.

Credentials are read from the config file, RESEARCH_HUB_* environment variables,
a .env file, or files in .secrets/ (serpapi-api-key, github-token,
semantic-scholar-api-key).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-hub.yaml or ~/.config/research-hub/research-hub.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable console logs")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-hub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-hub"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg types.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "research-hub").Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
