package pipeline

import "strings"

// Validation issue code roots. Several codes carry a qualifying suffix after
// a colon, e.g. "missing_field:title" or "low_confidence:0.30".
const (
	IssueMissingField    = "missing_field"
	IssueInvalidDate     = "invalid_date"
	IssueInvalidAudience = "invalid_audience"
	IssueLowConfidence   = "low_confidence"
	IssueMissingSource   = "missing_source"
	IssueInvalidType     = "invalid_type"
	IssueDateInPast      = "date_in_past"
)

func issueWith(code, detail string) string {
	return code + ":" + detail
}

// isCriticalIssue reports whether a code disqualifies an item from any tier
// above LATENT regardless of extraction confidence.
func isCriticalIssue(code string) bool {
	return strings.HasPrefix(code, IssueMissingField) || strings.HasPrefix(code, IssueInvalidType)
}
