package main

import (
	"encoding/json"
	"fmt"
	"os"

	"parentpath/internal/pipeline"
)

func loadItems(path string) ([]pipeline.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	return pipeline.DecodeItems(data)
}

func loadRecipients(path string) ([]pipeline.Recipient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipients file: %w", err)
	}
	return pipeline.DecodeRecipients(data)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
