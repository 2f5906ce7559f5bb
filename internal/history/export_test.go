package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/storage"
)

func TestExportCSVRoundTrip(t *testing.T) {
	l := NewLog(storage.NewMemoryKV(), 10)

	tricky := result("101")
	tricky.SourceText = `He said "markets", then added, "panic, everywhere"`
	tricky.Label = models.LabelFake
	tricky.Confidence = 0.87
	l.Append(result("100"))
	l.Append(tricky)

	data, err := l.ExportCSV(280)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	require.Equal(t, csvHeader, records[0])

	byID := map[string][]string{}
	for _, rec := range records[1:] {
		byID[rec[0]] = rec
	}

	row := byID["101"]
	require.NotNil(t, row)
	require.Equal(t, string(models.LabelFake), row[1])
	conf, err := strconv.ParseFloat(row[2], 64)
	require.NoError(t, err)
	require.InDelta(t, 0.87, conf, 0.005)
	require.Equal(t, tricky.SourceText, row[7], "embedded quotes and commas must survive")

	row = byID["100"]
	require.NotNil(t, row)
	require.Equal(t, string(models.LabelReal), row[1])
}

func TestExportCSVTruncatesPreview(t *testing.T) {
	l := NewLog(storage.NewMemoryKV(), 10)

	long := result("1")
	long.SourceText = strings.Repeat("a", 500)
	l.Append(long)

	data, err := l.ExportCSV(100)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Less(t, len(records[1][7]), 500)

	// JSON export preserves the full text.
	jsonData, err := l.ExportJSON()
	require.NoError(t, err)

	var exported []models.AnalysisResult
	require.NoError(t, json.Unmarshal(jsonData, &exported))
	require.Len(t, exported, 1)
	require.Equal(t, long.SourceText, exported[0].SourceText)
}

func TestExportJSONEmptyLog(t *testing.T) {
	l := NewLog(storage.NewMemoryKV(), 10)

	data, err := l.ExportJSON()
	require.NoError(t, err)

	var exported []models.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Empty(t, exported)
}
