// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the compliance-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, else the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the compliance-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "compliance-engine",
	Short: "Assess SRS documents for compliance against regulatory policies",
	Long: `compliance-engine checks a Software Requirements Specification (SRS)
against a governing regulatory policy such as GDPR. It extracts discrete
requirement units from the SRS, indexes the policy into clauses, retrieves
the clauses relevant to each requirement, classifies compliance with an
AI-backed assessor, and assembles an auditable per-requirement report.

Each stage is also exposed as a subcommand: index builds and inspects the
policy clause index, retrieve runs ad-hoc clause queries, assess runs the
full pipeline, and report re-parses existing narrative reports.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./compliance-engine.yaml or ~/.config/compliance-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("compliance-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "compliance-engine"))
		}
	}

	viper.SetEnvPrefix("COMPLIANCE_ENGINE")
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
