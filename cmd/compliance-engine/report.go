// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/compliance-engine/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with rendered compliance reports",
}

var reportParseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a narrative compliance report into the structured contract",
	Long: `Parse reads a rendered compliance report and extracts each requirement
block into the structured report contract. Useful for ingesting reports
produced by earlier runs or by external assessors using the same format.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportParse,
}

func init() {
	reportParseCmd.Flags().Bool("json", true, "output the structured contract as JSON")

	reportCmd.AddCommand(reportParseCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	parsed := report.ParseText(string(data))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(parsed); err != nil {
		return err
	}
	if !parsed.ParsingSuccess {
		return fmt.Errorf("report parsing failed: %s", *parsed.ErrorMessage)
	}
	return nil
}
