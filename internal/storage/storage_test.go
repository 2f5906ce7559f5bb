package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsguardai/newsguard/internal/models"
)

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	ctx := context.Background()

	got, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Upsert replaces.
	require.NoError(t, kv.Set(ctx, "k", []byte("v2")))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	require.NoError(t, kv.Delete(ctx, "k"))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", []byte("durable")))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("durable"), got)
}

func TestMemoryKVIsolatesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("original"), got, "stored value must not alias caller memory")
}

func TestPreferencesFailOpen(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	defaults := models.Preferences{Model: models.ModelBalanced, Language: models.LanguageAuto}

	// Absent blob.
	require.Equal(t, defaults, LoadPreferences(ctx, kv, defaults))

	// Corrupt blob.
	require.NoError(t, kv.Set(ctx, KeyPreferences, []byte("{oops")))
	require.Equal(t, defaults, LoadPreferences(ctx, kv, defaults))

	// Stored blob wins.
	stored := models.Preferences{Model: models.ModelAccurate, Language: models.LanguageSpanish}
	require.NoError(t, SavePreferences(ctx, kv, stored))
	require.Equal(t, stored, LoadPreferences(ctx, kv, defaults))

	// Partial blob falls back per field.
	require.NoError(t, kv.Set(ctx, KeyPreferences, []byte(`{"model": "fast"}`)))
	got := LoadPreferences(ctx, kv, defaults)
	require.Equal(t, models.ModelFast, got.Model)
	require.Equal(t, models.LanguageAuto, got.Language)
}
