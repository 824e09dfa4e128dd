package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringTuning holds the empirically chosen scoring constants. The shipped
// defaults match production behavior; a YAML file can override any subset.
type ScoringTuning struct {
	Weights struct {
		Confidence   float64 `yaml:"confidence"`
		Completeness float64 `yaml:"completeness"`
		Snippet      float64 `yaml:"snippet"`
		Tags         float64 `yaml:"tags"`
	} `yaml:"weights"`

	Snippet struct {
		EmptyScore      float64      `yaml:"empty_score"`
		NoisePenalty    float64      `yaml:"noise_penalty"`
		NoiseIndicators []string     `yaml:"noise_indicators"`
		LengthBands     []LengthBand `yaml:"length_bands"`
		OverlongScore   float64      `yaml:"overlong_score"`
	} `yaml:"snippet"`

	Levels struct {
		Excellent float64 `yaml:"excellent"`
		Good      float64 `yaml:"good"`
		Fair      float64 `yaml:"fair"`
	} `yaml:"levels"`
}

// LengthBand scores snippets up to and including UpTo characters.
type LengthBand struct {
	UpTo  int     `yaml:"up_to"`
	Score float64 `yaml:"score"`
}

// DefaultTuning returns the production scoring constants.
func DefaultTuning() ScoringTuning {
	var t ScoringTuning

	t.Weights.Confidence = 0.40
	t.Weights.Completeness = 0.30
	t.Weights.Snippet = 0.20
	t.Weights.Tags = 0.10

	t.Snippet.EmptyScore = 0.3
	t.Snippet.NoisePenalty = 0.2
	t.Snippet.NoiseIndicators = []string{
		"...", "???", "N/A", "TBD", "MISSING",
		"error", "failed", "unable to extract",
	}
	t.Snippet.LengthBands = []LengthBand{
		{UpTo: 19, Score: 0.3},
		{UpTo: 49, Score: 0.7},
		{UpTo: 300, Score: 1.0},
		{UpTo: 500, Score: 0.8},
	}
	t.Snippet.OverlongScore = 0.5

	t.Levels.Excellent = 0.85
	t.Levels.Good = 0.70
	t.Levels.Fair = 0.55

	return t
}

// LoadTuning reads a YAML tuning file layered over the defaults, so partial
// files only override the keys they mention.
func LoadTuning(path string) (ScoringTuning, error) {
	tuning := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return ScoringTuning{}, fmt.Errorf("pipeline: read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return ScoringTuning{}, fmt.Errorf("pipeline: parse tuning file: %w", err)
	}

	return tuning, nil
}
