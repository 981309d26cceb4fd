// Package models contains domain models for promptlean.
package models

// PromptType tags which text an execution ran: the user's original prompt
// or the optimized rewrite.
type PromptType string

const (
	PromptTypeOriginal  PromptType = "original"
	PromptTypeOptimized PromptType = "optimized"
)

// Valid reports whether t is a known prompt type.
func (t PromptType) Valid() bool {
	return t == PromptTypeOriginal || t == PromptTypeOptimized
}

// AnalysisRecord is one completed prompt-optimization event as read back
// from storage. Savings is fixed at write time and never recomputed; it is
// negative when the rewrite came out longer than the original.
//
// Username references a profile by value, not by id. After a wipe-and-
// recreate cycle the name may no longer resolve to a live profile.
type AnalysisRecord struct {
	ID                  int64  `db:"id" json:"id"`
	Username            string `db:"username" json:"username"`
	TimestampEpoch      int64  `db:"timestamp_epoch" json:"timestamp_epoch"`
	OriginalTokenCount  int64  `db:"original_token_count" json:"original_token_count"`
	OptimizedTokenCount int64  `db:"optimized_token_count" json:"optimized_token_count"`
	Savings             int64  `db:"savings" json:"savings"`
}

// ExecutionRecord is one "run this prompt and show the result" event as
// read back from storage.
type ExecutionRecord struct {
	ID             int64      `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	TimestampEpoch int64      `db:"timestamp_epoch" json:"timestamp_epoch"`
	PromptType     PromptType `db:"prompt_type" json:"prompt_type"`
	PromptText     string     `db:"prompt_text" json:"prompt_text"`
	ResultText     string     `db:"result_text" json:"result_text"`
}

// AnalysisDraft is an analysis event that has not been persisted yet. It
// carries no identity; only the store assigns ids and timestamps.
type AnalysisDraft struct {
	Username            string
	OriginalTokenCount  int64
	OptimizedTokenCount int64
}

// Savings returns original minus optimized token counts.
func (d AnalysisDraft) Savings() int64 {
	return d.OriginalTokenCount - d.OptimizedTokenCount
}

// ExecutionDraft is an execution event that has not been persisted yet.
type ExecutionDraft struct {
	Username   string
	PromptType PromptType
	PromptText string
	ResultText string
}
