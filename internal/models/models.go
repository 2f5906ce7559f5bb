// Package models defines the core data structures used throughout the application.
package models

import (
	"time"
)

// Model selects which remote model variant analyzes a submission. The value
// is passed through to the inference collaborator unmodified.
type Model string

const (
	ModelFast         Model = "fast"
	ModelBalanced     Model = "balanced"
	ModelAccurate     Model = "accurate"
	ModelMultilingual Model = "multilingual"
)

// Language is the submission language hint, also an opaque pass-through.
type Language string

const (
	LanguageAuto    Language = "auto"
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageSpanish Language = "es"
)

// Label is the canonical credibility verdict for one analysis.
type Label string

const (
	LabelReal    Label = "REAL"
	LabelFake    Label = "FAKE"
	LabelUnknown Label = "UNKNOWN"
)

// RiskBand is the presentation-level grouping derived from a heuristic
// score. It never appears in AnalysisResult.Label.
type RiskBand string

const (
	BandHighRisk   RiskBand = "HIGH RISK"
	BandSuspicious RiskBand = "SUSPICIOUS"
	BandSafe       RiskBand = "SAFE"
)

// RequestKind distinguishes text submissions from file submissions.
type RequestKind string

const (
	KindText RequestKind = "text"
	KindFile RequestKind = "file"
)

// AnalysisRequest is one submission to the orchestrator. Text submissions
// carry Text; file submissions carry FileName and FileData.
type AnalysisRequest struct {
	Kind     RequestKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	FileName string      `json:"file_name,omitempty"`
	FileData []byte      `json:"-"`
	Model    Model       `json:"model"`
	Language Language    `json:"language"`
}

// Entity is a named entity recognized in the analyzed text.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Evidence is a supporting or refuting source returned by the collaborator.
type Evidence struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// AnalysisResult is the canonical record of one analysis. It is created
// exclusively by the normalizer and immutable afterwards. Confidence is
// always in [0,1] and RiskScore is always recomputed locally from it.
type AnalysisResult struct {
	ID          string     `json:"id"`
	SourceText  string     `json:"source_text"`
	Label       Label      `json:"label"`
	Confidence  float64    `json:"confidence"`
	RiskScore   int        `json:"risk_score"`
	Keywords    []string   `json:"keywords"`
	Entities    []Entity   `json:"entities"`
	Evidence    []Evidence `json:"evidence"`
	Sentiment   string     `json:"sentiment,omitempty"`
	Readability float64    `json:"readability,omitempty"`
	Model       Model      `json:"model"`
	Language    Language   `json:"language"`
	CreatedAt   time.Time  `json:"created_at"`
}

// JobStatus is the lifecycle state of a queued file analysis.
// Transitions: pending -> processing -> done | error. Terminal states are
// final; re-enqueueing is the only retry.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Job is one queued file analysis. A done job carries Result; an error job
// carries a short diagnostic in Error.
type Job struct {
	ID         string          `json:"id"`
	Request    AnalysisRequest `json:"request"`
	Status     JobStatus       `json:"status"`
	Result     *AnalysisResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j *Job) Terminal() bool {
	return j.Status == JobDone || j.Status == JobError
}

// Preferences are the persisted model/language selections.
type Preferences struct {
	Model    Model    `json:"model"`
	Language Language `json:"language"`
}
