package main

import (
	"github.com/spf13/cobra"

	"parentpath/internal/config"
	"parentpath/internal/pipeline"
)

var validateFlags struct {
	items string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Classify extracted items into trust tiers",
	Long: `Validate runs every rule check against a JSON corpus of extracted items
and prints the batch summary: per-item trust tiers, issue codes, and the
auto-approval statistics.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.items, "items", "", "Path to items JSON (defaults to PARENTPATH_ITEMS)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	path := validateFlags.items
	if path == "" {
		path = cfg.ItemsPath
	}

	items, err := loadItems(path)
	if err != nil {
		return err
	}

	validator := pipeline.NewValidator()
	return printJSON(validator.ValidateBatch(items))
}
