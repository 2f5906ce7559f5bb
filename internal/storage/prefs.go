package storage

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/models"
)

// LoadPreferences reads the persisted model/language selections, falling
// back to the supplied defaults when the stored blob is missing or corrupt.
func LoadPreferences(ctx context.Context, kv KV, defaults models.Preferences) models.Preferences {
	data, err := kv.Get(ctx, KeyPreferences)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load preferences, using defaults")
		return defaults
	}
	if data == nil {
		return defaults
	}

	var prefs models.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		log.Warn().Err(err).Msg("Corrupt preferences blob, using defaults")
		return defaults
	}
	if prefs.Model == "" {
		prefs.Model = defaults.Model
	}
	if prefs.Language == "" {
		prefs.Language = defaults.Language
	}
	return prefs
}

// SavePreferences persists the model/language selections.
func SavePreferences(ctx context.Context, kv KV, prefs models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return kv.Set(ctx, KeyPreferences, data)
}
