package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	db "github.com/promptlean/promptlean/internal/db/gorm"
	"github.com/promptlean/promptlean/internal/generation"
	"github.com/promptlean/promptlean/internal/report"
	"github.com/promptlean/promptlean/internal/session"
	"github.com/promptlean/promptlean/pkg/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Users())
}

type addUserRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.session.AddUser(r.Context(), req.Name)
	switch {
	case errors.Is(err, db.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "user might already exist")
	case errors.Is(err, session.ErrEmptyUserName):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, user)
	}
}

type analyzeRequest struct {
	Username string `json:"username"`
	Prompt   string `json:"prompt"`
}

type analyzeResponse struct {
	Record          *models.AnalysisRecord `json:"record"`
	OptimizedPrompt string                 `json:"optimized_prompt"`
	Explanation     string                 `json:"explanation"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.session.Analyze(r.Context(), req.Username, req.Prompt)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, analyzeResponse{
		Record:          out.Record,
		OptimizedPrompt: out.OptimizedPrompt,
		Explanation:     out.Explanation,
	})
}

type executeRequest struct {
	Username   string            `json:"username"`
	PromptType models.PromptType `json:"prompt_type"`
	Prompt     string            `json:"prompt"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.session.Execute(r.Context(), req.Username, req.PromptType, req.Prompt)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// writeSessionError maps session failures to HTTP statuses: validation to
// 400, generation-service failures to 502, everything else to 500.
func writeSessionError(w http.ResponseWriter, err error) {
	var genErr *generation.Error
	switch {
	case errors.Is(err, session.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, genErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseWindowParam(r *http.Request) (report.Window, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return report.WindowAll, nil
	}
	return report.ParseWindow(raw)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.session.Report(window, time.Now()))
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Buffer first so an empty report produces no body at all
	var buf bytes.Buffer
	err = s.session.WriteReportCSV(&buf, window, time.Now())
	if errors.Is(err, report.ErrEmptyReport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
