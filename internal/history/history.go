// Package history maintains the bounded, persisted log of past analyses.
package history

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/storage"
)

// Log is an append-only, capacity-bounded record of analysis results,
// newest first. Every mutation persists the whole log; persistence failures
// are logged and otherwise ignored so the log keeps working in memory.
type Log struct {
	mu       sync.Mutex
	entries  []models.AnalysisResult
	capacity int
	kv       storage.KV
}

// NewLog creates a log bound to kv and reloads any persisted entries.
// Corrupt or unreadable persisted data is treated as an empty log.
func NewLog(kv storage.KV, capacity int) *Log {
	l := &Log{
		capacity: capacity,
		kv:       kv,
	}
	l.load()
	return l
}

func (l *Log) load() {
	data, err := l.kv.Get(context.Background(), storage.KeyHistory)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load history, starting empty")
		return
	}
	if data == nil {
		return
	}

	var entries []models.AnalysisResult
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Msg("Corrupt history blob, starting empty")
		return
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	l.entries = entries
}

// persist writes the full log under the history key. Callers hold l.mu.
func (l *Log) persist() {
	data, err := json.Marshal(l.entries)
	if err != nil {
		log.Error().Err(err).Msg("Failed to serialize history")
		return
	}
	if err := l.kv.Set(context.Background(), storage.KeyHistory, data); err != nil {
		log.Error().Err(err).Msg("Failed to persist history")
	}
}

// Append inserts a result at the head, evicting the oldest entry once the
// log is at capacity.
func (l *Log) Append(result models.AnalysisResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]models.AnalysisResult{result}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	l.persist()
}

// Remove deletes the entry with the given id. Removing an absent id is a
// no-op.
func (l *Log) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.persist()
			return
		}
	}
}

// Clear empties the log and its persisted copy.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	if err := l.kv.Delete(context.Background(), storage.KeyHistory); err != nil {
		log.Error().Err(err).Msg("Failed to clear persisted history")
	}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []models.AnalysisResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.AnalysisResult, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
