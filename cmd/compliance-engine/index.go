// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/document"
	"github.com/pdiddy/compliance-engine/internal/policy"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the policy clause index",
	Long: `Index parses a policy document into clauses keyed by article or section
references, builds the retrieval index, and prints a clause summary.
Use --export to dump the full clause list as YAML.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("policy", "", "path to the policy text file (required)")
	indexCmd.Flags().Bool("export", false, "dump all clauses as YAML")
	indexCmd.MarkFlagRequired("policy")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	policyPath, _ := cmd.Flags().GetString("policy")
	export, _ := cmd.Flags().GetBool("export")

	raw, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("reading policy: %w", err)
	}

	index, policyText, err := buildIndex(cmd.Context(), string(raw))
	if err != nil {
		return err
	}
	defer index.Close()

	if export {
		return index.ExportYAML(cmd.Context(), os.Stdout)
	}

	clauses := policy.ParseClauses(policyText)
	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %s\n", "ID", "Reference", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, c := range clauses {
		text := truncate(strings.Join(strings.Fields(c.Text), " "), 60)
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %s\n", c.ID, c.ArticleRef, text)
	}
	fmt.Fprintf(os.Stdout, "\n%d clauses\n", len(clauses))
	return nil
}

// truncate shortens s to at most n runes for display, never splitting a
// multi-byte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// buildIndex normalizes the policy text and builds a fresh clause index.
func buildIndex(ctx context.Context, raw string) (*policy.Index, string, error) {
	docCfg := types.DocumentConfig{MaxBytes: viper.GetInt("document.max_bytes")}
	policyText, err := document.Normalize("policy", raw, docCfg)
	if err != nil {
		return nil, "", err
	}

	index, err := policy.NewIndex(types.IndexConfig{
		Dir:        viper.GetString("index.dir"),
		MaxResults: viper.GetInt("index.max_results"),
	})
	if err != nil {
		return nil, "", err
	}

	if _, err := index.Build(ctx, policyText); err != nil {
		index.Close()
		return nil, "", err
	}
	return index, policyText, nil
}
