package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "parentpath",
	Short: "Trust scoring and personalized digests for school-newsletter items",
	Long: "ParentPath takes AI-extracted newsletter items, classifies how much each\n" +
		"one can be trusted, scores extraction quality, and assembles personalized\n" +
		"weekly digests for parents.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
