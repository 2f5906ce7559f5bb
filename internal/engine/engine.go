// Package engine orchestrates the analysis pipeline: accept a submission,
// call the inference collaborator or the local scorer, normalize the
// outcome, and record it in history. File submissions go through the job
// queue instead of running inline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/heuristic"
	"github.com/newsguardai/newsguard/internal/history"
	"github.com/newsguardai/newsguard/internal/inference"
	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/normalize"
	"github.com/newsguardai/newsguard/internal/queue"
)

// ErrEmptyInput is returned for submissions with no text and no file. It
// never reaches history or the queue.
var ErrEmptyInput = errors.New("please provide text or upload a file for analysis")

const (
	defaultTextTimeout = 60 * time.Second
	defaultFileTimeout = 120 * time.Second
)

// Options tune a new engine. Zero values fall back to defaults.
type Options struct {
	TextTimeout time.Duration
	FileTimeout time.Duration
	// Jitter is passed to the heuristic scorer; nil keeps it deterministic.
	Jitter func(score int) int
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Engine is the public entry point for analysis submissions.
type Engine struct {
	client      inference.Client // nil means heuristic-only demo mode
	scorer      *heuristic.Scorer
	normalizer  *normalize.Normalizer
	history     *history.Log
	queue       *queue.Queue
	textTimeout time.Duration
	fileTimeout time.Duration
}

// New creates an engine. client may be nil, in which case every text
// submission is scored locally and file jobs fail.
func New(client inference.Client, hist *history.Log, q *queue.Queue, opts Options) *Engine {
	if opts.TextTimeout <= 0 {
		opts.TextTimeout = defaultTextTimeout
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = defaultFileTimeout
	}

	return &Engine{
		client:      client,
		scorer:      &heuristic.Scorer{Jitter: opts.Jitter},
		normalizer:  normalize.New(opts.Clock),
		history:     hist,
		queue:       q,
		textTimeout: opts.TextTimeout,
		fileTimeout: opts.FileTimeout,
	}
}

// Start launches the queue drain worker. It runs until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.queue.Start(ctx, e.analyzeJob)
}

// History exposes the engine's history log to the presentation layer.
func (e *Engine) History() *history.Log {
	return e.history
}

// Queue exposes the engine's job queue to the presentation layer.
func (e *Engine) Queue() *queue.Queue {
	return e.queue
}

// SubmitText analyzes text inline. The inference collaborator is preferred;
// on any remote failure the local scorer produces a degraded-but-functional
// result instead. Every successful call appends exactly one result to
// history.
func (e *Engine) SubmitText(ctx context.Context, text string, model models.Model, lang models.Language) (models.AnalysisResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.AnalysisResult{}, ErrEmptyInput
	}

	if e.client != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.textTimeout)
		payload, err := e.client.PredictText(callCtx, trimmed, model, lang)
		cancel()

		if err == nil {
			result := e.normalizer.Normalize(payload, trimmed, model, lang)
			e.history.Append(result)
			log.Info().Str("result_id", result.ID).Str("label", string(result.Label)).
				Str("provider", e.client.Name()).Msg("Text analysis complete")
			return result, nil
		}
		log.Warn().Err(err).Msg("Inference unavailable, falling back to heuristic scorer")
	}

	score, err := e.scorer.Score(trimmed)
	if err != nil {
		return models.AnalysisResult{}, ErrEmptyInput
	}

	result := e.normalizer.FromHeuristic(score, trimmed, model, lang)
	e.history.Append(result)
	log.Info().Str("result_id", result.ID).Str("label", string(result.Label)).
		Int("score", score.Score).Str("band", string(heuristic.Band(score.Score))).
		Msg("Heuristic analysis complete")
	return result, nil
}

// SubmitFile enqueues a file for analysis and returns the pending job. File
// analysis has high and variable latency, so it never runs inline.
func (e *Engine) SubmitFile(_ context.Context, fileName string, data []byte, model models.Model, lang models.Language) (models.Job, error) {
	if strings.TrimSpace(fileName) == "" || len(data) == 0 {
		return models.Job{}, ErrEmptyInput
	}

	job := e.queue.Enqueue(models.AnalysisRequest{
		Kind:     models.KindFile,
		FileName: fileName,
		FileData: data,
		Model:    model,
		Language: lang,
	})
	return job, nil
}

// analyzeJob runs one drained job. File jobs have no heuristic fallback;
// a remote failure surfaces as a job error.
func (e *Engine) analyzeJob(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if e.client == nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: no provider configured", inference.ErrUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.fileTimeout)
	defer cancel()

	payload, err := e.client.PredictFile(callCtx, req.FileName, req.FileData, req.Model, req.Language)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	// File submissions store the file name as the source-text surrogate.
	result := e.normalizer.Normalize(payload, req.FileName, req.Model, req.Language)
	e.history.Append(result)
	return result, nil
}
