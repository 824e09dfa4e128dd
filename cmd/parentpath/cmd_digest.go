package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"parentpath/internal/config"
	"parentpath/internal/llm"
	"parentpath/internal/logging"
	"parentpath/internal/pipeline"
)

var digestFlags struct {
	items       string
	recipients  string
	recipientID []string
	window      int
	workers     int
	autoApprove bool
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Assemble personalized weekly digests",
	Long: `Digest filters the approved corpus against each recipient's children and
activity subscriptions, groups the matches by kind, and renders one message
per recipient. Non-English recipients get a translated digest when a Gemini
API key is configured; translation failures fall back to English.

With --auto-approve, pending items are validated first and the ones reaching
the auto-approval tier enter the corpus.`,
	RunE: runDigest,
}

func init() {
	f := digestCmd.Flags()
	f.StringVar(&digestFlags.items, "items", "", "Path to items JSON (defaults to PARENTPATH_ITEMS)")
	f.StringVar(&digestFlags.recipients, "recipients", "", "Path to recipients JSON (defaults to PARENTPATH_RECIPIENTS)")
	f.StringArrayVar(&digestFlags.recipientID, "recipient", nil, "Limit to a recipient ID (repeatable; default all active)")
	f.IntVar(&digestFlags.window, "window", 0, "Window in days (defaults to PARENTPATH_WINDOW_DAYS)")
	f.IntVar(&digestFlags.workers, "workers", 0, "Parallel digest workers (defaults to PARENTPATH_WORKERS)")
	f.BoolVar(&digestFlags.autoApprove, "auto-approve", false, "Validate pending items and approve the auto-approval tier first")
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)

	itemsPath := digestFlags.items
	if itemsPath == "" {
		itemsPath = cfg.ItemsPath
	}
	recipientsPath := digestFlags.recipients
	if recipientsPath == "" {
		recipientsPath = cfg.RecipientsPath
	}

	items, err := loadItems(itemsPath)
	if err != nil {
		return err
	}
	recipients, err := loadRecipients(recipientsPath)
	if err != nil {
		return err
	}

	store := pipeline.NewItemStore()
	for _, item := range items {
		store.Add(item)
	}

	if digestFlags.autoApprove {
		approvePending(store, logger)
	}

	directory := pipeline.NewRecipientDirectory()
	for _, recipient := range recipients {
		directory.Add(recipient)
	}

	var translator pipeline.Translator
	if cfg.GeminiAPIKey != "" {
		translator = pipeline.GeminiTranslator{
			Client:      llm.NewClient(cfg.GeminiAPIKey, llm.WithTimeout(cfg.TranslateTimeout)),
			Model:       cfg.GeminiModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.TranslateTimeout,
		}
		logger.Info("translation enabled", "model", cfg.GeminiModel)
	}

	runner, err := pipeline.NewRunner(pipeline.NewAssembler(translator, logger), store, directory, logger)
	if err != nil {
		return err
	}
	if digestFlags.workers > 0 {
		runner.Workers = digestFlags.workers
	} else if cfg.Workers > 0 {
		runner.Workers = cfg.Workers
	}

	window := digestFlags.window
	if window <= 0 {
		window = cfg.WindowDays
	}

	digests, err := runner.RunAll(cmd.Context(), digestFlags.recipientID, window)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(digests))
	for id := range digests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("=== %s ===\n%s\n\n", id, digests[id])
	}
	logger.Info("digest run complete", "recipients", len(digests), "window_days", window)

	return nil
}

// approvePending validates pending items in place, promoting the ones the
// validator auto-approves.
func approvePending(store *pipeline.ItemStore, logger *slog.Logger) {
	validator := pipeline.NewValidator()
	approved := 0
	for _, item := range store.All() {
		if item.Status != pipeline.StatusPending {
			continue
		}
		if validator.Validate(item).Approved {
			store.SetStatus(item.ID, pipeline.StatusApproved)
			approved++
		}
	}
	logger.Info("auto-approval pass complete", "approved", approved)
}
