package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsguardai/newsguard/internal/heuristic"
	"github.com/newsguardai/newsguard/internal/models"
)

func payloadFromJSON(t *testing.T, body string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestNormalizeConfidenceClamping(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name string
		body string
		want float64
	}{
		{"negative", `{"confidence": -0.4}`, 0},
		{"above one", `{"confidence": 7.5}`, 1},
		{"non numeric", `{"confidence": "very sure"}`, 0},
		{"absent", `{}`, 0},
		{"wrapped score", `{"confidence": {"score": 0.73}}`, 0.73},
		{"wrapped score out of range", `{"confidence": {"score": -3}}`, 0},
		{"in range", `{"confidence": 0.42}`, 0.42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize(payloadFromJSON(t, tt.body), "text", models.ModelBalanced, models.LanguageAuto)
			require.InDelta(t, tt.want, result.Confidence, 1e-9)
			require.GreaterOrEqual(t, result.Confidence, 0.0)
			require.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestNormalizeRiskScoreRelation(t *testing.T) {
	n := New(nil)

	for _, body := range []string{
		`{"confidence": 0.0}`,
		`{"confidence": 0.25}`,
		`{"confidence": 0.87, "risk_score": 3}`,
		`{"confidence": 1.0}`,
		`{"confidence": 99}`,
	} {
		result := n.Normalize(payloadFromJSON(t, body), "text", models.ModelFast, models.LanguageEnglish)
		want := int(math.Round((1 - result.Confidence) * 100))
		require.Equal(t, want, result.RiskScore, "body %s", body)
	}
}

func TestNormalizeLabelFallbackChain(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name string
		body string
		want models.Label
	}{
		{"label wins", `{"label": "REAL", "prediction": "FAKE"}`, models.LabelReal},
		{"prediction fallback", `{"prediction": "fake"}`, models.LabelFake},
		{"lowercase label", `{"label": "real"}`, models.LabelReal},
		{"unrecognized", `{"label": "PROBABLY_TRUE"}`, models.LabelUnknown},
		{"non-string label, valid prediction", `{"label": 42, "prediction": "REAL"}`, models.LabelReal},
		{"nothing", `{}`, models.LabelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize(payloadFromJSON(t, tt.body), "text", models.ModelBalanced, models.LanguageAuto)
			require.Equal(t, tt.want, result.Label)
		})
	}
}

func TestNormalizeSequencesNeverNil(t *testing.T) {
	n := New(nil)
	result := n.Normalize(payloadFromJSON(t, `{}`), "text", models.ModelBalanced, models.LanguageAuto)

	require.NotNil(t, result.Keywords)
	require.NotNil(t, result.Entities)
	require.NotNil(t, result.Evidence)
	require.Empty(t, result.Keywords)
	require.Empty(t, result.Entities)
	require.Empty(t, result.Evidence)
}

func TestNormalizeDropsMalformedEntries(t *testing.T) {
	n := New(nil)
	body := `{
		"keywords": ["economy", 17, "inflation", {"x": 1}],
		"entities": [{"text": "RBI", "type": "ORG"}, {"type": "ORG"}, "stray"],
		"evidence": [{"title": "Coverage", "link": "https://example.org"}, {}, 4]
	}`
	result := n.Normalize(payloadFromJSON(t, body), "text", models.ModelBalanced, models.LanguageAuto)

	require.Equal(t, []string{"economy", "inflation"}, result.Keywords)
	require.Equal(t, []models.Entity{{Text: "RBI", Type: "ORG"}}, result.Entities)
	require.Equal(t, []models.Evidence{{Title: "Coverage", Link: "https://example.org"}}, result.Evidence)
}

func TestNormalizeOptionalFields(t *testing.T) {
	n := New(nil)
	body := `{"sentiment": "neutral", "readability": 62.5}`
	result := n.Normalize(payloadFromJSON(t, body), "text", models.ModelBalanced, models.LanguageAuto)

	require.Equal(t, "neutral", result.Sentiment)
	require.InDelta(t, 62.5, result.Readability, 1e-9)

	// Wrong types degrade to zero values.
	body = `{"sentiment": 3, "readability": "high"}`
	result = n.Normalize(payloadFromJSON(t, body), "text", models.ModelBalanced, models.LanguageAuto)
	require.Empty(t, result.Sentiment)
	require.Zero(t, result.Readability)
}

func TestNormalizeIDsMonotonic(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := New(func() time.Time { return fixed })

	var prev int64
	for i := 0; i < 10; i++ {
		result := n.Normalize(payloadFromJSON(t, `{}`), "text", models.ModelBalanced, models.LanguageAuto)
		id, err := strconv.ParseInt(result.ID, 10, 64)
		require.NoError(t, err)
		require.Greater(t, id, prev, "ids must be strictly increasing")
		prev = id
		require.Equal(t, fixed, result.CreatedAt)
	}
}

func TestFromHeuristicLabelMapping(t *testing.T) {
	n := New(nil)

	low := n.FromHeuristic(heuristic.Score{Score: 12, Confidence: 10, Explanation: []string{"sensational language detected"}},
		"text", models.ModelBalanced, models.LanguageAuto)
	require.Equal(t, models.LabelFake, low.Label)
	require.Equal(t, []string{"sensational language detected"}, low.Keywords)

	mid := n.FromHeuristic(heuristic.Score{Score: 52, Confidence: 46}, "text", models.ModelBalanced, models.LanguageAuto)
	require.Equal(t, models.LabelReal, mid.Label)
	require.InDelta(t, 0.46, mid.Confidence, 1e-9)
	require.Equal(t, int(math.Round((1-0.46)*100)), mid.RiskScore)

	high := n.FromHeuristic(heuristic.Score{Score: 80, Confidence: 70}, "text", models.ModelBalanced, models.LanguageAuto)
	require.Equal(t, models.LabelReal, high.Label)
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		confidence float64
		want       int
	}{
		{0, 100},
		{1, 0},
		{0.87, 13},
		{0.5, 50},
		{-2, 100}, // clamped before derivation
		{3, 0},
	}
	for _, tt := range tests {
		if got := RiskScore(tt.confidence); got != tt.want {
			t.Errorf("RiskScore(%v) = %d, want %d", tt.confidence, got, tt.want)
		}
	}
}
