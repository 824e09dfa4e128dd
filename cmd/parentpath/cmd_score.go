package main

import (
	"github.com/spf13/cobra"

	"parentpath/internal/config"
	"parentpath/internal/pipeline"
)

var scoreFlags struct {
	items     string
	tuning    string
	breakdown bool
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score extraction quality for a corpus of items",
	Long: `Score computes the weighted multi-signal quality score for each item and
prints the batch summary. With --breakdown it prints the full per-item
component scores, strengths, and weaknesses instead.`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&scoreFlags.items, "items", "", "Path to items JSON (defaults to PARENTPATH_ITEMS)")
	f.StringVar(&scoreFlags.tuning, "tuning", "", "Path to YAML scoring tuning overrides")
	f.BoolVar(&scoreFlags.breakdown, "breakdown", false, "Print per-item quality breakdowns")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	path := scoreFlags.items
	if path == "" {
		path = cfg.ItemsPath
	}
	items, err := loadItems(path)
	if err != nil {
		return err
	}

	scorer := pipeline.NewScorer()
	tuningPath := scoreFlags.tuning
	if tuningPath == "" {
		tuningPath = cfg.TuningPath
	}
	if tuningPath != "" {
		tuning, err := pipeline.LoadTuning(tuningPath)
		if err != nil {
			return err
		}
		scorer.Tuning = tuning
	}

	if scoreFlags.breakdown {
		breakdowns := make([]pipeline.QualityBreakdown, 0, len(items))
		for _, item := range items {
			breakdowns = append(breakdowns, scorer.Breakdown(item))
		}
		return printJSON(breakdowns)
	}

	return printJSON(scorer.ScoreBatch(items))
}
