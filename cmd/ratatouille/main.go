// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ratatouille CLI.
// Implements: prd001-intake, prd005-pipeline-core, prd007-http-api
//
//	(CLI surface).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brooondooon/ratatouille/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, then the secrets directory, then
// the process environment. Config beats secrets so a config file can pin a
// key explicitly.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// rootCmd is the base command for the ratatouille CLI.
var rootCmd = &cobra.Command{
	Use:   "ratatouille",
	Short: "Recipe recommendations that teach cooking skills",
	Long: `ratatouille finds recipes that teach the cooking skill you want to learn.
It plans web searches around a learning goal, extracts recipes from the
results, ranks them for teaching value and variety, and annotates the picks
with reasoning and nutrition estimates.

Use recommend for structured requests, chat for natural-language requests,
ask for one-off cooking questions, and serve to run the HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ratatouille.yaml or ~/.config/ratatouille/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "print stage-by-stage pipeline progress")
}

// progressWriter is where pipeline progress lines go: stderr with --verbose,
// discarded otherwise.
func progressWriter() io.Writer {
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		return os.Stderr
	}
	return io.Discard
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ratatouille")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ratatouille"))
		}
	}

	viper.SetEnvPrefix("RATATOUILLE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
