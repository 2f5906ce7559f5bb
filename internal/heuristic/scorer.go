// Package heuristic provides the local rule-based credibility scorer used
// when no inference collaborator is reachable.
package heuristic

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/newsguardai/newsguard/internal/models"
)

// ErrEmptyText is returned for blank or whitespace-only input.
var ErrEmptyText = errors.New("nothing to analyze")

// authoritativeTerms raise the score; each occurrence counts.
var authoritativeTerms = []string{
	"official",
	"report",
	"verified",
	"study",
	"journal",
	"press release",
	"according to",
	"confirmed",
}

var (
	sensationalPattern = regexp.MustCompile(`(?i)shocking|miracle|overnight|you won'?t believe|doctors hate|secret cure`)
	punctuationPattern = regexp.MustCompile(`!{3,}|\?{3,}`)
)

// Score is the raw heuristic output on a 0-100 scale.
type Score struct {
	Score       int      `json:"score"`
	Confidence  int      `json:"confidence"`
	Explanation []string `json:"explanation"`
}

// Scorer evaluates text with a fixed rule set. Jitter, when non-nil, is
// added to the confidence term before clamping; it exists for demo callers
// that want live-looking fluctuation and must stay nil in production paths
// that need determinism.
type Scorer struct {
	Jitter func(score int) int
}

// Score rates the credibility of text. Longer texts and authoritative
// vocabulary raise the score; sensational phrasing and excessive
// punctuation lower it.
func (s *Scorer) Score(text string) (Score, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Score{}, ErrEmptyText
	}

	var explanation []string

	lengthScore := math.Min(1, float64(len(trimmed))/300) * 40
	if lengthScore >= 40 {
		explanation = append(explanation, "substantial article length suggests a developed story")
	}

	lower := strings.ToLower(trimmed)
	matches := 0
	for _, term := range authoritativeTerms {
		matches += strings.Count(lower, term)
	}
	keywordScore := math.Min(20, float64(7*matches))
	if matches > 0 {
		explanation = append(explanation, fmt.Sprintf("references authoritative sourcing (%d cue(s))", matches))
	}

	sensationalPenalty := 0.0
	if sensationalPattern.MatchString(trimmed) {
		sensationalPenalty = -30
		explanation = append(explanation, "sensational language detected")
	}

	punctuationPenalty := 0.0
	if punctuationPattern.MatchString(trimmed) {
		punctuationPenalty = -10
		explanation = append(explanation, "excessive punctuation detected")
	}

	if len(explanation) == 0 {
		explanation = append(explanation, "balanced cues matched")
	}

	score := clamp(int(math.Round(lengthScore+keywordScore+sensationalPenalty+punctuationPenalty+30)), 0, 100)

	confidence := int(math.Round(float64(score) * 0.88))
	if s.Jitter != nil {
		confidence += s.Jitter(score)
	}
	confidence = clamp(confidence, 0, 99)

	return Score{
		Score:       score,
		Confidence:  confidence,
		Explanation: explanation,
	}, nil
}

// Band maps a heuristic score onto the presentation risk bands.
func Band(score int) models.RiskBand {
	switch {
	case score < 40:
		return models.BandHighRisk
	case score <= 65:
		return models.BandSuspicious
	default:
		return models.BandSafe
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
