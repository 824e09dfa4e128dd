package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type rawItem struct {
	ID            string   `json:"id"`
	Kind          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	EndDate       string   `json:"end_date"`
	Deadline      string   `json:"deadline"`
	Location      string   `json:"location"`
	AudienceTags  []string `json:"audience_tags"`
	ActionLink    string   `json:"action_link"`
	Cost          *float64 `json:"cost"`
	SourceSnippet string   `json:"source_snippet"`
	SourcePage    *int     `json:"source_page"`
	Confidence    *float64 `json:"confidence_score"`
	Reasoning     string   `json:"extraction_reasoning"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

// DecodeItems parses a JSON corpus as the extraction collaborator emits it.
// Field-level problems (bad dates, missing titles) are preserved for the
// validator to flag; only malformed JSON or an unparsable created_at fails.
func DecodeItems(data []byte) ([]Item, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var raws []rawItem
	if err := decoder.Decode(&raws); err != nil {
		return nil, fmt.Errorf("pipeline: decode items: %w", err)
	}

	items := make([]Item, 0, len(raws))
	for _, r := range raws {
		createdAt := time.Time{}
		if r.CreatedAt != "" {
			parsed, err := parseDate(r.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("pipeline: item %s: parse created_at: %w", r.ID, err)
			}
			createdAt = parsed
		}

		items = append(items, Item{
			ID:            r.ID,
			Kind:          ItemKind(r.Kind),
			Title:         r.Title,
			Description:   r.Description,
			Date:          r.Date,
			Time:          r.Time,
			EndDate:       r.EndDate,
			Deadline:      r.Deadline,
			Location:      r.Location,
			AudienceTags:  r.AudienceTags,
			ActionLink:    r.ActionLink,
			Cost:          r.Cost,
			SourceSnippet: r.SourceSnippet,
			SourcePage:    r.SourcePage,
			Confidence:    r.Confidence,
			Reasoning:     r.Reasoning,
			Status:        r.Status,
			CreatedAt:     createdAt,
		})
	}

	return items, nil
}

type rawRecipient struct {
	ID         string   `json:"id"`
	Language   string   `json:"language"`
	Status     string   `json:"status"`
	Children   []Child  `json:"children"`
	Activities []string `json:"activities"`
}

// DecodeRecipients parses recipient profiles from JSON.
func DecodeRecipients(data []byte) ([]Recipient, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var raws []rawRecipient
	if err := decoder.Decode(&raws); err != nil {
		return nil, fmt.Errorf("pipeline: decode recipients: %w", err)
	}

	recipients := make([]Recipient, 0, len(raws))
	for _, r := range raws {
		recipients = append(recipients, Recipient{
			ID:         r.ID,
			Language:   r.Language,
			Status:     r.Status,
			Children:   r.Children,
			Activities: r.Activities,
		})
	}

	return recipients, nil
}
