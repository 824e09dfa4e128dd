package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tier confidence constants. The tiers form a finite classifier, not a state
// machine: a result is computed once and never transitions.
const (
	prestigeConfidence     = 0.90
	hypotheticalConfidence = 0.70
	borderlineConfidence   = 0.65
	latentConfidence       = 0.40
)

// pastTolerance is how far in the past an event date may lie before it is
// flagged; newsletters routinely describe last week's events.
const pastTolerance = 7 * 24 * time.Hour

// minSnippetLen is the shortest trimmed source snippet considered evidence.
const minSnippetLen = 10

// Validator classifies extracted items into trust tiers.
type Validator struct {
	// Now supplies the validation clock; defaults to time.Now.
	Now func() time.Time
}

// NewValidator returns a Validator using the wall clock.
func NewValidator() Validator {
	return Validator{Now: time.Now}
}

// Validate applies every rule check to a single item and classifies it.
// It is pure: no I/O, no mutation of the input.
func (v Validator) Validate(item Item) ValidationResult {
	var issues []string
	var notes []string

	// 1. Required fields.
	if item.Kind == "" {
		issues = append(issues, issueWith(IssueMissingField, "kind"))
	}
	if item.Title == "" {
		issues = append(issues, issueWith(IssueMissingField, "title"))
	}
	if len(item.AudienceTags) == 0 {
		issues = append(issues, IssueInvalidAudience)
	}

	// 2. Kind must come from the closed set.
	if item.Kind != "" {
		if _, ok := validKinds[item.Kind]; !ok {
			issues = append(issues, issueWith(IssueInvalidType, string(item.Kind)))
		}
	}

	// 3. Date rules apply to events only.
	if item.Kind == KindEvent {
		issues, notes = v.checkEventDates(item, issues, notes)
	}

	// 4. Source snippet quality.
	if len(strings.TrimSpace(item.SourceSnippet)) < minSnippetLen {
		issues = append(issues, IssueMissingSource)
		notes = append(notes, "Source snippet missing or too short")
	}

	// 5. Extraction confidence.
	confidence := 0.0
	if item.Confidence == nil {
		issues = append(issues, issueWith(IssueLowConfidence, "missing"))
		notes = append(notes, "No extraction confidence score")
	} else {
		confidence = *item.Confidence
		if confidence < 0.5 {
			formatted := strconv.FormatFloat(confidence, 'g', -1, 64)
			issues = append(issues, issueWith(IssueLowConfidence, formatted))
			notes = append(notes, fmt.Sprintf("Extraction confidence %s < 0.5", formatted))
		}
	}

	tier, tierConfidence := determineTier(issues, confidence)

	if issues == nil {
		issues = []string{}
	}
	if len(notes) == 0 {
		notes = append(notes, "All validation checks passed")
	}

	return ValidationResult{
		Tier:       tier,
		Confidence: tierConfidence,
		Issues:     issues,
		Approved:   tier == TierPrestige,
		Reasoning:  strings.Join(notes, "; "),
	}
}

func (v Validator) checkEventDates(item Item, issues, notes []string) ([]string, []string) {
	if item.Date == "" {
		issues = append(issues, issueWith(IssueMissingField, "date"))
	} else {
		eventDate, err := parseDate(item.Date)
		if err != nil {
			issues = append(issues, issueWith(IssueInvalidDate, "parse_failed"))
		} else if eventDate.Before(v.today().Add(-pastTolerance)) {
			issues = append(issues, IssueDateInPast)
			notes = append(notes, fmt.Sprintf("Event date %s is >7 days past", eventDate.Format("2006-01-02")))
		}
	}

	if item.Date != "" && item.EndDate != "" {
		start, startErr := parseDate(item.Date)
		end, endErr := parseDate(item.EndDate)
		if startErr == nil && endErr == nil && end.Before(start) {
			issues = append(issues, issueWith(IssueInvalidDate, "end_before_start"))
		}
	}

	return issues, notes
}

func (v Validator) today() time.Time {
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// determineTier maps issues plus extraction confidence onto a trust tier,
// checked in strict precedence order.
func determineTier(issues []string, confidence float64) (TrustTier, float64) {
	hasCritical := false
	for _, code := range issues {
		if isCriticalIssue(code) {
			hasCritical = true
			break
		}
	}

	count := len(issues)

	if count == 0 && confidence >= 0.80 {
		return TierPrestige, prestigeConfidence
	}
	if !hasCritical {
		if confidence >= 0.60 && count <= 2 {
			return TierHypothetical, hypotheticalConfidence
		}
		if confidence >= 0.50 && count <= 1 {
			return TierHypothetical, borderlineConfidence
		}
	}
	return TierLatent, latentConfidence
}

// ValidateBatch validates each item independently and aggregates statistics.
// One item's issues never abort the rest of the batch.
func (v Validator) ValidateBatch(items []Item) BatchValidation {
	batch := BatchValidation{
		Total:   len(items),
		Results: make([]ValidationResult, 0, len(items)),
	}

	for _, item := range items {
		result := v.Validate(item)
		batch.Results = append(batch.Results, result)

		switch result.Tier {
		case TierPrestige:
			batch.PrestigeCount++
			batch.AutoApproved++
		case TierHypothetical:
			batch.HypotheticalCount++
		default:
			batch.LatentCount++
		}
	}

	batch.NeedsReview = batch.HypotheticalCount
	if batch.Total > 0 {
		batch.ApprovalRate = float64(batch.AutoApproved) / float64(batch.Total)
	}

	return batch
}

// parseDate accepts the calendar formats extraction emits: a plain date or a
// full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("pipeline: unparsable date %q", value)
}
