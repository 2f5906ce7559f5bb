package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"
)

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{
	"id", "label", "confidence", "risk_score", "model", "language", "created_at", "source_text",
}

// ExportJSON serializes the current log, newest first, preserving full
// source text.
func (l *Log) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(l.Entries(), "", "  ")
}

// ExportCSV serializes the current log as CSV. Source text is truncated to
// previewChars runes; embedded quotes and commas are escaped by the writer.
func (l *Log) ExportCSV(previewChars int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range l.Entries() {
		row := []string{
			e.ID,
			string(e.Label),
			strconv.FormatFloat(e.Confidence, 'f', 2, 64),
			strconv.Itoa(e.RiskScore),
			string(e.Model),
			string(e.Language),
			e.CreatedAt.UTC().Format(time.RFC3339),
			truncate(e.SourceText, previewChars),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
