// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/assess"
	"github.com/pdiddy/compliance-engine/internal/orchestrate"
	"github.com/pdiddy/compliance-engine/internal/policy"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the full compliance pipeline on an SRS/policy pair",
	Long: `Assess extracts requirement units from the SRS, indexes the policy into
clauses, retrieves the clauses relevant to each requirement, classifies
compliance for each, and prints the final report.

Per-requirement failures are isolated: a requirement whose retrieval or
assessment cannot complete is reported with status "Failed" while the
remaining requirements are still assessed.`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().String("srs", "", "path to the SRS text file (required)")
	assessCmd.Flags().String("policy", "", "path to the policy text file (required)")
	assessCmd.Flags().String("policy-name", "", "policy label for the report header, e.g. GDPR (required)")
	assessCmd.Flags().String("model", "", "AI model identifier for assessment")
	assessCmd.Flags().String("api-key", "", "AI API key (default: .secrets/anthropic-api-key)")
	assessCmd.Flags().Int("workers", 0, "concurrent per-requirement tasks (default 4)")
	assessCmd.Flags().Int("top-k", 0, "clauses retrieved per requirement (default 4)")
	assessCmd.Flags().Float64("min-score", 0, "minimum clause relevance score")
	assessCmd.Flags().Bool("json", false, "output the structured report contract as JSON")

	assessCmd.MarkFlagRequired("srs")
	assessCmd.MarkFlagRequired("policy")
	assessCmd.MarkFlagRequired("policy-name")

	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	srsPath, _ := cmd.Flags().GetString("srs")
	policyPath, _ := cmd.Flags().GetString("policy")
	policyName, _ := cmd.Flags().GetString("policy-name")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	srsRaw, err := os.ReadFile(srsPath)
	if err != nil {
		return fmt.Errorf("reading SRS: %w", err)
	}
	policyRaw, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("reading policy: %w", err)
	}

	cfg := pipelineConfigFromFlags(cmd)

	index, err := policy.NewIndex(cfg.Index)
	if err != nil {
		return err
	}
	defer index.Close()

	runner := &orchestrate.Runner{
		Indexer:    index,
		Classifier: assess.NewClaudeClassifier(cfg.Assessment),
		Config:     cfg,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parsed, err := runner.Run(ctx, string(srsRaw), string(policyRaw), policyName, os.Stderr)
	if err != nil && !jsonOutput {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(parsed); encErr != nil {
			return encErr
		}
		if !parsed.ParsingSuccess {
			return fmt.Errorf("compliance run aborted")
		}
		return nil
	}

	fmt.Println(parsed.RawText)
	return nil
}

// pipelineConfigFromFlags merges command flags over viper-config values.
func pipelineConfigFromFlags(cmd *cobra.Command) types.PipelineConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("assessment.model")
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = secretDefault("anthropic-api-key", apiKey)

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = viper.GetInt("orchestrator.workers")
	}
	topK, _ := cmd.Flags().GetInt("top-k")
	if topK == 0 {
		topK = viper.GetInt("retrieval.top_k")
	}
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	if minScore == 0 {
		minScore = viper.GetFloat64("retrieval.min_score")
	}

	return types.PipelineConfig{
		Document: types.DocumentConfig{
			MaxBytes: viper.GetInt("document.max_bytes"),
		},
		Index: types.IndexConfig{
			Dir:        viper.GetString("index.dir"),
			MaxResults: viper.GetInt("index.max_results"),
		},
		Retrieval: types.RetrievalConfig{
			TopK:     topK,
			MinScore: minScore,
		},
		Assessment: types.AssessmentConfig{
			AIConfig: types.AIConfig{
				Model:      model,
				APIKey:     apiKey,
				MaxRetries: viper.GetInt("assessment.max_retries"),
				Timeout:    viper.GetDuration("assessment.timeout"),
			},
		},
		Orchestrator: types.OrchestratorConfig{
			Workers:    workers,
			MaxRetries: viper.GetInt("orchestrator.max_retries"),
		},
	}
}
