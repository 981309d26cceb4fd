package report

import (
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/promptlean/promptlean/pkg/models"
)

// CostPerMillionTokens is the reference price used to turn token savings
// into a dollar figure. The result is a display approximation, not a
// billing-accurate number.
const CostPerMillionTokens = 0.35

// UserSummary is the per-user fold of all qualifying records in a window.
type UserSummary struct {
	Username             string  `json:"username"`
	TotalPrompts         int64   `json:"total_prompts"`
	TotalExecutions      int64   `json:"total_executions"`
	TotalOriginalTokens  int64   `json:"total_original_tokens"`
	TotalOptimizedTokens int64   `json:"total_optimized_tokens"`
	TotalSavings         int64   `json:"total_savings"`
	EstimatedCostSavings float64 `json:"estimated_cost_savings"`
}

// Aggregate folds analysis and execution history into per-user summaries
// for the given window evaluated at now. A record qualifies when its
// timestamp is at or after the window start. Entries are created lazily the
// first time a username appears in either filtered list. Savings sum as
// stored and may be negative; they are not clamped.
func Aggregate(analysis []*models.AnalysisRecord, executions []*models.ExecutionRecord, window Window, now time.Time) map[string]*UserSummary {
	start := window.Start(now).UnixMilli()
	summaries := make(map[string]*UserSummary)

	entry := func(username string) *UserSummary {
		s, ok := summaries[username]
		if !ok {
			s = &UserSummary{Username: username}
			summaries[username] = s
		}
		return s
	}

	for _, rec := range analysis {
		if rec.TimestampEpoch < start {
			continue
		}
		s := entry(rec.Username)
		s.TotalPrompts++
		s.TotalOriginalTokens += rec.OriginalTokenCount
		s.TotalOptimizedTokens += rec.OptimizedTokenCount
		s.TotalSavings += rec.Savings
	}

	for _, rec := range executions {
		if rec.TimestampEpoch < start {
			continue
		}
		entry(rec.Username).TotalExecutions++
	}

	for _, s := range summaries {
		s.EstimatedCostSavings = float64(s.TotalSavings) / 1_000_000 * CostPerMillionTokens
	}

	return summaries
}

// Usernames returns the report's keys sorted ascending with locale-aware
// comparison, for deterministic output.
func Usernames(summaries map[string]*UserSummary) []string {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	collate.New(language.English).SortStrings(names)
	return names
}
