package pipeline

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Scorer computes multi-signal extraction quality scores. It is independent
// of validation: a quality score is advisory, a trust tier is a decision.
type Scorer struct {
	Tuning ScoringTuning
}

// NewScorer returns a Scorer with the default tuning.
func NewScorer() Scorer {
	return Scorer{Tuning: DefaultTuning()}
}

// Score computes the weighted overall quality score in [0,1], rounded to
// three decimal places.
func (s Scorer) Score(item Item) float64 {
	w := s.Tuning.Weights
	overall := s.scoreConfidence(item)*w.Confidence +
		s.scoreCompleteness(item)*w.Completeness +
		s.scoreSnippet(item)*w.Snippet +
		s.scoreTags(item)*w.Tags
	return roundTo(overall, 3)
}

// scoreConfidence clamps the extraction confidence; absence is uncertainty,
// not failure, so it scores neutral rather than zero.
func (s Scorer) scoreConfidence(item Item) float64 {
	if item.Confidence == nil {
		return 0.5
	}
	return clamp01(*item.Confidence)
}

// requiredFields lists the fields a complete item of each kind must carry.
var requiredFields = map[ItemKind][]string{
	KindEvent:          {"title", "date", "description"},
	KindPermissionSlip: {"title", "deadline", "action_link"},
	KindFundraiser:     {"title", "description", "cost"},
	KindHotLunch:       {"title", "date", "cost", "deadline"},
	KindAnnouncement:   {"title", "description"},
}

var optionalFields = []string{"location", "time", "end_date", "cost"}

func (s Scorer) scoreCompleteness(item Item) float64 {
	required, ok := requiredFields[item.Kind]
	if !ok {
		required = requiredFields[KindAnnouncement]
	}

	present := 0
	for _, field := range required {
		if hasField(item, field) {
			present++
		}
	}
	completeness := float64(present) / float64(len(required))

	optional := 0
	for _, field := range optionalFields {
		if hasField(item, field) {
			optional++
		}
	}
	bonus := math.Min(float64(optional)/float64(len(optionalFields)), 1.0) * 0.2

	return math.Min(completeness+bonus, 1.0)
}

func hasField(item Item, field string) bool {
	switch field {
	case "title":
		return item.Title != ""
	case "description":
		return item.Description != ""
	case "date":
		return item.Date != ""
	case "time":
		return item.Time != ""
	case "end_date":
		return item.EndDate != ""
	case "deadline":
		return item.Deadline != ""
	case "location":
		return item.Location != ""
	case "action_link":
		return item.ActionLink != ""
	case "cost":
		return item.Cost != nil
	default:
		return false
	}
}

func (s Scorer) scoreSnippet(item Item) float64 {
	snippet := item.SourceSnippet
	if snippet == "" {
		return s.Tuning.Snippet.EmptyScore
	}

	length := utf8.RuneCountInString(snippet)
	lengthScore := s.Tuning.Snippet.OverlongScore
	for _, band := range s.Tuning.Snippet.LengthBands {
		if length <= band.UpTo {
			lengthScore = band.Score
			break
		}
	}

	contentScore := 1.0
	lowered := strings.ToLower(snippet)
	for _, indicator := range s.Tuning.Snippet.NoiseIndicators {
		if strings.Contains(lowered, strings.ToLower(indicator)) {
			contentScore -= s.Tuning.Snippet.NoisePenalty
		}
	}
	contentScore = math.Max(0.0, contentScore)

	return lengthScore*0.5 + contentScore*0.5
}

func (s Scorer) scoreTags(item Item) float64 {
	if len(item.AudienceTags) == 0 {
		return 0.0
	}

	specific := 0
	for _, tag := range item.AudienceTags {
		if tag != "all" {
			specific++
		}
	}

	switch {
	case specific == 0:
		return 0.3
	case specific == 1:
		return 0.7
	default:
		return 1.0
	}
}

// Breakdown produces the detailed quality assessment for one item.
func (s Scorer) Breakdown(item Item) QualityBreakdown {
	components := ComponentScores{
		Confidence:     roundTo(s.scoreConfidence(item), 3),
		Completeness:   roundTo(s.scoreCompleteness(item), 3),
		Snippet:        roundTo(s.scoreSnippet(item), 3),
		TagSpecificity: roundTo(s.scoreTags(item), 3),
	}
	overall := s.Score(item)
	level := s.level(overall)

	var strengths, weaknesses []string
	if components.Confidence >= 0.7 {
		strengths = append(strengths, "High AI confidence")
	} else if components.Confidence < 0.5 {
		weaknesses = append(weaknesses, "Low AI confidence - needs review")
	}
	if components.Completeness >= 0.8 {
		strengths = append(strengths, "All required fields present")
	} else if components.Completeness < 0.6 {
		weaknesses = append(weaknesses, "Missing required fields")
	}
	if components.Snippet >= 0.7 {
		strengths = append(strengths, "Good source snippet quality")
	} else if components.Snippet < 0.5 {
		weaknesses = append(weaknesses, "Poor source snippet - may need re-extraction")
	}
	if components.TagSpecificity >= 0.7 {
		strengths = append(strengths, "Specific audience targeting")
	} else if components.TagSpecificity < 0.5 {
		weaknesses = append(weaknesses, "Broad audience tags - consider refinement")
	}

	return QualityBreakdown{
		OverallScore:   overall,
		Level:          level,
		Components:     components,
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		Recommendation: recommendations[level],
	}
}

var recommendations = map[QualityLevel]string{
	LevelExcellent: "Ready for delivery to parents. High confidence.",
	LevelGood:      "Approved for delivery. Minor refinements may improve quality.",
	LevelFair:      "Review recommended. May need field enrichment or tag refinement.",
	LevelPoor:      "Manual review required before delivery. Check extraction accuracy.",
}

func (s Scorer) level(score float64) QualityLevel {
	switch {
	case score >= s.Tuning.Levels.Excellent:
		return LevelExcellent
	case score >= s.Tuning.Levels.Good:
		return LevelGood
	case score >= s.Tuning.Levels.Fair:
		return LevelFair
	default:
		return LevelPoor
	}
}

// ScoreBatch scores every item and summarises the distribution. An empty
// input yields a zero-valued summary, not an error.
func (s Scorer) ScoreBatch(items []Item) BatchQuality {
	batch := BatchQuality{Distribution: make(map[QualityLevel]int)}
	if len(items) == 0 {
		return batch
	}

	var total float64
	for _, item := range items {
		score := s.Score(item)
		total += score
		batch.Distribution[s.level(score)]++
	}

	batch.TotalItems = len(items)
	batch.AverageScore = roundTo(total/float64(len(items)), 3)
	batch.ItemsNeedingReview = batch.Distribution[LevelFair] + batch.Distribution[LevelPoor]

	return batch
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func roundTo(v float64, prec int) float64 {
	p := math.Pow10(prec)
	return math.Round(v*p) / p
}
