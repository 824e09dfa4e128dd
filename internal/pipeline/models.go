package pipeline

import "time"

// ItemKind enumerates the categories the extraction collaborator may assign.
type ItemKind string

const (
	KindEvent          ItemKind = "Event"
	KindPermissionSlip ItemKind = "PermissionSlip"
	KindFundraiser     ItemKind = "Fundraiser"
	KindHotLunch       ItemKind = "HotLunch"
	KindAnnouncement   ItemKind = "Announcement"
)

// validKinds is the closed set accepted by validation; anything else is flagged.
var validKinds = map[ItemKind]struct{}{
	KindEvent:          {},
	KindPermissionSlip: {},
	KindFundraiser:     {},
	KindHotLunch:       {},
	KindAnnouncement:   {},
}

// Item lifecycle status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusArchived = "archived"
)

// Item represents a single AI-extracted newsletter record.
// Calendar fields are kept as strings exactly as extraction emitted them;
// an unparsable date is a data-quality signal, not a decode failure.
type Item struct {
	ID            string    `json:"id"`
	Kind          ItemKind  `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Date          string    `json:"date,omitempty"`
	Time          string    `json:"time,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	Deadline      string    `json:"deadline,omitempty"`
	Location      string    `json:"location,omitempty"`
	AudienceTags  []string  `json:"audience_tags"`
	ActionLink    string    `json:"action_link,omitempty"`
	Cost          *float64  `json:"cost,omitempty"`
	SourceSnippet string    `json:"source_snippet,omitempty"`
	SourcePage    *int      `json:"source_page,omitempty"`
	Confidence    *float64  `json:"confidence_score,omitempty"`
	Reasoning     string    `json:"extraction_reasoning,omitempty"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// TrustTier indicates how much a record is trusted without human review.
type TrustTier string

const (
	TierLatent       TrustTier = "LATENT"
	TierHypothetical TrustTier = "HYPOTHETICAL"
	TierPrestige     TrustTier = "PRESTIGE"
)

// ValidationResult is the immutable outcome of validating one item.
// Re-validation produces a fresh result, never a mutation of a prior one.
type ValidationResult struct {
	Tier       TrustTier `json:"tier"`
	Confidence float64   `json:"confidence"`
	Issues     []string  `json:"issues"`
	Approved   bool      `json:"approved"`
	Reasoning  string    `json:"reasoning"`
}

// BatchValidation aggregates per-item validation results with batch statistics.
type BatchValidation struct {
	Total             int                `json:"total"`
	PrestigeCount     int                `json:"prestige_count"`
	HypotheticalCount int                `json:"hypothetical_count"`
	LatentCount       int                `json:"latent_count"`
	AutoApproved      int                `json:"auto_approved"`
	NeedsReview       int                `json:"needs_review"`
	ApprovalRate      float64            `json:"approval_rate"`
	Results           []ValidationResult `json:"results"`
}

// QualityLevel buckets an overall quality score.
type QualityLevel string

const (
	LevelExcellent QualityLevel = "Excellent"
	LevelGood      QualityLevel = "Good"
	LevelFair      QualityLevel = "Fair"
	LevelPoor      QualityLevel = "Poor"
)

// ComponentScores carries the four weighted quality components.
type ComponentScores struct {
	Confidence     float64 `json:"confidence"`
	Completeness   float64 `json:"completeness"`
	Snippet        float64 `json:"snippet"`
	TagSpecificity float64 `json:"tag_specificity"`
}

// QualityBreakdown is the detailed quality assessment for one item.
type QualityBreakdown struct {
	OverallScore   float64         `json:"overall_score"`
	Level          QualityLevel    `json:"level"`
	Components     ComponentScores `json:"component_scores"`
	Strengths      []string        `json:"strengths"`
	Weaknesses     []string        `json:"weaknesses"`
	Recommendation string          `json:"recommendation"`
}

// BatchQuality summarises quality scoring across many items.
type BatchQuality struct {
	TotalItems         int                  `json:"total_items"`
	AverageScore       float64              `json:"average_score"`
	Distribution       map[QualityLevel]int `json:"quality_distribution"`
	ItemsNeedingReview int                  `json:"items_needing_review"`
}

// Recipient status values.
const (
	RecipientActive       = "active"
	RecipientPaused       = "paused"
	RecipientUnsubscribed = "unsubscribed"
)

// Child is one child in a recipient household.
type Child struct {
	Name  string `json:"name,omitempty"`
	Grade int    `json:"grade"`
}

// Recipient is a parent profile used to personalize digests.
type Recipient struct {
	ID         string   `json:"id"`
	Language   string   `json:"language"`
	Status     string   `json:"status,omitempty"`
	Children   []Child  `json:"children"`
	Activities []string `json:"activities,omitempty"`
}

// Section groups the digest items of one kind, in render order.
type Section struct {
	Kind  ItemKind `json:"kind"`
	Items []Item   `json:"items"`
}

// Digest is the assembled message for one recipient: the grouped sections
// that were rendered plus the final text form. Built fresh per invocation.
type Digest struct {
	Sections []Section `json:"sections"`
	Text     string    `json:"text"`
}

// ItemCount returns the number of items across all sections.
func (d Digest) ItemCount() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Items)
	}
	return total
}
