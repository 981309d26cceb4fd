// Package gorm provides GORM-based database operations for promptlean.
package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/promptlean/promptlean/pkg/models"
)

// GORM Models
//
// Stored rows are immutable after creation. The only bulk state transition
// is Store.ClearAllData.

// User is the stored user profile row. The unique index on name is the
// duplicate-detection mechanism; the application never pre-checks.
type User struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"uniqueIndex:idx_users_name_unique;not null"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// BeforeCreate hook to ensure the timestamp is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.CreatedAtEpoch == 0 {
		u.CreatedAtEpoch = time.Now().UnixMilli()
	}
	return nil
}

// AnalysisRow is one prompt-optimization event. Savings is written once at
// creation and never derived from the token counts again.
type AnalysisRow struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	Username            string `gorm:"index:idx_analysis_username;not null"`
	TimestampEpoch      int64  `gorm:"index:idx_analysis_timestamp;not null"`
	OriginalTokenCount  int64  `gorm:"not null"`
	OptimizedTokenCount int64  `gorm:"not null"`
	Savings             int64  `gorm:"not null"`
}

func (AnalysisRow) TableName() string { return "analysis_history" }

// BeforeCreate hook to ensure the timestamp is set.
func (r *AnalysisRow) BeforeCreate(tx *gorm.DB) error {
	if r.TimestampEpoch == 0 {
		r.TimestampEpoch = time.Now().UnixMilli()
	}
	return nil
}

// ExecutionRow is one prompt-execution event.
type ExecutionRow struct {
	ID             int64             `gorm:"primaryKey;autoIncrement"`
	Username       string            `gorm:"index:idx_execution_username;not null"`
	TimestampEpoch int64             `gorm:"index:idx_execution_timestamp;not null"`
	PromptType     models.PromptType `gorm:"type:text;check:prompt_type IN ('original', 'optimized');not null"`
	PromptText     string            `gorm:"type:text;not null"`
	ResultText     string            `gorm:"type:text;not null"`
}

func (ExecutionRow) TableName() string { return "execution_history" }

// BeforeCreate hook to ensure the timestamp is set.
func (r *ExecutionRow) BeforeCreate(tx *gorm.DB) error {
	if r.TimestampEpoch == 0 {
		r.TimestampEpoch = time.Now().UnixMilli()
	}
	return nil
}

func toModelUser(u *User) *models.UserProfile {
	return &models.UserProfile{
		ID:             u.ID,
		Name:           u.Name,
		CreatedAtEpoch: u.CreatedAtEpoch,
	}
}

func toModelAnalysis(r *AnalysisRow) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:                  r.ID,
		Username:            r.Username,
		TimestampEpoch:      r.TimestampEpoch,
		OriginalTokenCount:  r.OriginalTokenCount,
		OptimizedTokenCount: r.OptimizedTokenCount,
		Savings:             r.Savings,
	}
}

func toModelExecution(r *ExecutionRow) *models.ExecutionRecord {
	return &models.ExecutionRecord{
		ID:             r.ID,
		Username:       r.Username,
		TimestampEpoch: r.TimestampEpoch,
		PromptType:     r.PromptType,
		PromptText:     r.PromptText,
		ResultText:     r.ResultText,
	}
}
