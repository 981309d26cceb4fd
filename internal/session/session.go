// Package session coordinates the persistent store, the generation client,
// and the in-memory copies of all historical records. Writes go through the
// store first; memory is updated only after the store accepts the record,
// so a failed write never leaves the two out of sync.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	db "github.com/promptlean/promptlean/internal/db/gorm"
	"github.com/promptlean/promptlean/internal/generation"
	"github.com/promptlean/promptlean/internal/report"
	"github.com/promptlean/promptlean/pkg/models"
)

// ErrEmptyPrompt rejects blank prompt text before any network or storage
// call happens. Zero side effects.
var ErrEmptyPrompt = errors.New("prompt text is empty")

// ErrEmptyUserName rejects blank profile names the same way.
var ErrEmptyUserName = errors.New("user name is empty")

// Session holds the in-memory view of the stored collections.
type Session struct {
	store   *db.Store
	users   *db.UserStore
	history *db.HistoryStore
	client  generation.Client

	mu         sync.RWMutex
	profiles   []*models.UserProfile
	analysis   []*models.AnalysisRecord
	executions []*models.ExecutionRecord
}

// New creates a session over an opened store and a generation client.
func New(store *db.Store, client generation.Client) *Session {
	return &Session{
		store:   store,
		users:   db.NewUserStore(store),
		history: db.NewHistoryStore(store),
		client:  client,
	}
}

// Load bulk-loads every collection from the store. Called once at startup.
func (s *Session) Load(ctx context.Context) error {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	analysis, err := s.history.GetAllAnalysis(ctx)
	if err != nil {
		return fmt.Errorf("load analysis history: %w", err)
	}
	executions, err := s.history.GetAllExecutions(ctx)
	if err != nil {
		return fmt.Errorf("load execution history: %w", err)
	}

	s.mu.Lock()
	s.profiles = users
	s.analysis = analysis
	s.executions = executions
	s.mu.Unlock()

	log.Debug().
		Int("users", len(users)).
		Int("analysis_records", len(analysis)).
		Int("execution_records", len(executions)).
		Msg("Session state loaded")
	return nil
}

// Users returns the cached profiles.
func (s *Session) Users() []*models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.UserProfile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// AddUser creates a profile and appends it to the cached list.
func (s *Session) AddUser(ctx context.Context, name string) (*models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyUserName
	}

	user, err := s.users.AddUser(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profiles = append(s.profiles, user)
	s.mu.Unlock()
	return user, nil
}

// AnalyzeOutcome pairs the persisted record with the rewrite shown to the
// end user. The explanation is display-only and is not persisted.
type AnalyzeOutcome struct {
	Record          *models.AnalysisRecord
	OptimizedPrompt string
	Explanation     string
}

// Analyze sends promptText for optimization and records the event for
// username.
func (s *Session) Analyze(ctx context.Context, username, promptText string) (*AnalyzeOutcome, error) {
	if strings.TrimSpace(promptText) == "" {
		return nil, ErrEmptyPrompt
	}

	res, err := s.client.Analyze(ctx, promptText)
	if err != nil {
		return nil, err
	}

	rec, err := s.history.AddAnalysis(ctx, models.AnalysisDraft{
		Username:            username,
		OriginalTokenCount:  res.OriginalTokenCount,
		OptimizedTokenCount: res.OptimizedTokenCount,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.analysis = append(s.analysis, rec)
	s.mu.Unlock()

	log.Debug().Str("username", username).Int64("savings", rec.Savings).Msg("Analysis recorded")
	return &AnalyzeOutcome{
		Record:          rec,
		OptimizedPrompt: res.OptimizedPrompt,
		Explanation:     res.Explanation,
	}, nil
}

// Execute runs promptText through the model and records the event.
func (s *Session) Execute(ctx context.Context, username string, promptType models.PromptType, promptText string) (*models.ExecutionRecord, error) {
	if strings.TrimSpace(promptText) == "" {
		return nil, ErrEmptyPrompt
	}
	if !promptType.Valid() {
		return nil, fmt.Errorf("unknown prompt type %q", promptType)
	}

	result, err := s.client.Execute(ctx, promptText)
	if err != nil {
		return nil, err
	}

	rec, err := s.history.AddExecution(ctx, models.ExecutionDraft{
		Username:   username,
		PromptType: promptType,
		PromptText: promptText,
		ResultText: result,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.executions = append(s.executions, rec)
	s.mu.Unlock()
	return rec, nil
}

// Report aggregates the cached history for the window, evaluated at now.
func (s *Session) Report(window report.Window, now time.Time) map[string]*report.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Aggregate(s.analysis, s.executions, window, now)
}

// WriteReportCSV exports the windowed report. Returns report.ErrEmptyReport
// when there is nothing to export; in that case nothing is written to w.
func (s *Session) WriteReportCSV(w io.Writer, window report.Window, now time.Time) error {
	return report.WriteCSV(w, s.Report(window, now))
}

// ClearAll wipes the store and resets the in-memory state. Memory is reset
// only after the store wipe commits.
func (s *Session) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAllData(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.profiles = nil
	s.analysis = nil
	s.executions = nil
	s.mu.Unlock()

	log.Info().Msg("All data cleared")
	return nil
}
