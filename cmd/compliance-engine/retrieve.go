// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the policy clause index with free text",
	Long: `Retrieve builds the clause index for a policy document and returns the
clauses most relevant to a free-text query, ranked by relevance score.
Ties are broken by clause ID for deterministic output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().String("policy", "", "path to the policy text file (required)")
	retrieveCmd.Flags().Int("top-k", 0, "number of clauses to return (default 4)")
	retrieveCmd.Flags().Float64("min-score", 0, "minimum relevance score")
	retrieveCmd.Flags().Bool("json", false, "output results as JSON")
	retrieveCmd.MarkFlagRequired("policy")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	policyPath, _ := cmd.Flags().GetString("policy")
	topK, _ := cmd.Flags().GetInt("top-k")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	raw, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("reading policy: %w", err)
	}

	index, _, err := buildIndex(cmd.Context(), string(raw))
	if err != nil {
		return err
	}
	defer index.Close()

	query := strings.Join(args, " ")
	results, err := index.Retrieve(cmd.Context(), query, topK, minScore)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No clauses above the relevance threshold.")
		return nil
	}

	for i, r := range results {
		text := truncate(strings.Join(strings.Fields(r.Clause.Text), " "), 100)
		fmt.Fprintf(os.Stdout, "%d. [%s] %s (score %.2f)\n   %s\n",
			i+1, r.Clause.ID, r.Clause.ArticleRef, r.Score, text)
	}
	return nil
}
