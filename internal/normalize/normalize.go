// Package normalize maps arbitrary upstream responses and heuristic output
// into the canonical AnalysisResult. Every field has a defined fallback, so
// normalization never fails on partial or malformed data; the rest of the
// system depends only on AnalysisResult, never on the wire shape.
package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/newsguardai/newsguard/internal/heuristic"
	"github.com/newsguardai/newsguard/internal/models"
)

// Payload is the tolerant view of an upstream response body. Fields are kept
// raw so type mismatches degrade to their documented defaults instead of
// failing the decode.
type Payload struct {
	Label       json.RawMessage `json:"label"`
	Prediction  json.RawMessage `json:"prediction"`
	Confidence  json.RawMessage `json:"confidence"`
	Keywords    json.RawMessage `json:"keywords"`
	Entities    json.RawMessage `json:"entities"`
	Evidence    json.RawMessage `json:"evidence"`
	Sentiment   json.RawMessage `json:"sentiment"`
	Readability json.RawMessage `json:"readability"`
}

// Normalizer builds canonical results. Ids and timestamps are always
// generated locally; an untrusted upstream never supplies them.
type Normalizer struct {
	ids   IDGenerator
	clock func() time.Time
}

// New creates a Normalizer. A nil clock means time.Now.
func New(clock func() time.Time) *Normalizer {
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{clock: clock}
}

// Normalize turns an upstream payload into a canonical result. sourceText is
// the analyzed text, or the file name for file submissions.
func (n *Normalizer) Normalize(p Payload, sourceText string, model models.Model, lang models.Language) models.AnalysisResult {
	now := n.clock()
	confidence := clampUnit(parseConfidence(p.Confidence))

	return models.AnalysisResult{
		ID:          n.ids.Next(now),
		SourceText:  sourceText,
		Label:       parseLabel(p.Label, p.Prediction),
		Confidence:  confidence,
		RiskScore:   RiskScore(confidence),
		Keywords:    parseKeywords(p.Keywords),
		Entities:    parseEntities(p.Entities),
		Evidence:    parseEvidence(p.Evidence),
		Sentiment:   parseString(p.Sentiment),
		Readability: parseNumber(p.Readability),
		Model:       model,
		Language:    lang,
		CreatedAt:   now,
	}
}

// FromHeuristic wraps local scorer output in a canonical result. The label
// follows the risk bands: a HIGH RISK score reads as FAKE, everything else
// as REAL, while SUSPICIOUS/SAFE remain presentation-only groupings. The
// triggered rule explanations become the result's key indicators.
func (n *Normalizer) FromHeuristic(sc heuristic.Score, sourceText string, model models.Model, lang models.Language) models.AnalysisResult {
	now := n.clock()

	label := models.LabelReal
	if heuristic.Band(sc.Score) == models.BandHighRisk {
		label = models.LabelFake
	}

	confidence := clampUnit(float64(sc.Confidence) / 100)
	keywords := make([]string, 0, len(sc.Explanation))
	keywords = append(keywords, sc.Explanation...)

	return models.AnalysisResult{
		ID:         n.ids.Next(now),
		SourceText: sourceText,
		Label:      label,
		Confidence: confidence,
		RiskScore:  RiskScore(confidence),
		Keywords:   keywords,
		Entities:   []models.Entity{},
		Evidence:   []models.Evidence{},
		Model:      model,
		Language:   lang,
		CreatedAt:  now,
	}
}

// RiskScore derives the 0-100 risk integer from a clamped confidence. It is
// always recomputed locally so UI risk bands stay consistent even when the
// upstream omits or invents its own.
func RiskScore(confidence float64) int {
	return int(math.Round((1 - clampUnit(confidence)) * 100))
}

func parseLabel(label, prediction json.RawMessage) models.Label {
	for _, raw := range []json.RawMessage{label, prediction} {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		switch models.Label(strings.ToUpper(strings.TrimSpace(s))) {
		case models.LabelReal:
			return models.LabelReal
		case models.LabelFake:
			return models.LabelFake
		}
	}
	return models.LabelUnknown
}

// parseConfidence accepts a bare number or an object carrying {"score": n}.
func parseConfidence(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var wrapped struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Score
	}
	return 0
}

// parseKeywords keeps string entries and drops everything else.
func parseKeywords(raw json.RawMessage) []string {
	keywords := []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return keywords
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			keywords = append(keywords, s)
		}
	}
	return keywords
}

// parseEntities keeps {text,type} records with a non-empty text.
func parseEntities(raw json.RawMessage) []models.Entity {
	entities := []models.Entity{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return entities
	}
	for _, item := range items {
		var e models.Entity
		if err := json.Unmarshal(item, &e); err == nil && e.Text != "" {
			entities = append(entities, e)
		}
	}
	return entities
}

// parseEvidence keeps {title,link} records that carry at least one field.
func parseEvidence(raw json.RawMessage) []models.Evidence {
	evidence := []models.Evidence{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return evidence
	}
	for _, item := range items {
		var ev models.Evidence
		if err := json.Unmarshal(item, &ev); err == nil && (ev.Title != "" || ev.Link != "") {
			evidence = append(evidence, ev)
		}
	}
	return evidence
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func parseNumber(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return f
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
