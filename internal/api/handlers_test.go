// Package api exposes the session over a small HTTP surface.
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	db "github.com/promptlean/promptlean/internal/db/gorm"
	"github.com/promptlean/promptlean/internal/generation"
	"github.com/promptlean/promptlean/internal/session"
)

// fakeClient is a canned generation client.
type fakeClient struct {
	analyzeRes *generation.AnalysisResult
	analyzeErr error
	executeRes string
}

func (f *fakeClient) Analyze(ctx context.Context, promptText string) (*generation.AnalysisResult, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analyzeRes, nil
}

func (f *fakeClient) Execute(ctx context.Context, promptText string) (string, error) {
	return f.executeRes, nil
}

func testServer(t *testing.T, client generation.Client) *Server {
	t.Helper()

	store, err := db.NewStore(db.Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		MaxConns: 4,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess := session.New(store, client)
	require.NoError(t, sess.Load(context.Background()))
	return NewServer(sess, "test-version")
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := testServer(t, &fakeClient{})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-version", body["version"])
}

func TestAddUserEndpoint(t *testing.T) {
	srv := testServer(t, &fakeClient{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/users", `{"name":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/users", `{"name":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "might already exist")

	// Blank name
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/users", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// List
	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t, &fakeClient{
		analyzeRes: &generation.AnalysisResult{
			OriginalTokenCount:  100,
			OptimizedPrompt:     "short",
			OptimizedTokenCount: 40,
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/analyze", `{"username":"alice","prompt":"a long prompt"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 60, body.Record.Savings)
	assert.Equal(t, "short", body.OptimizedPrompt)
}

func TestAnalyzeEndpointEmptyPrompt(t *testing.T) {
	srv := testServer(t, &fakeClient{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/analyze", `{"username":"alice","prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpointServiceFailure(t *testing.T) {
	srv := testServer(t, &fakeClient{
		analyzeErr: &generation.Error{Op: "analyze", Msg: "service returned 503"},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/analyze", `{"username":"alice","prompt":"p"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExecuteEndpoint(t *testing.T) {
	srv := testServer(t, &fakeClient{executeRes: "model output"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/execute", `{"username":"alice","prompt_type":"optimized","prompt":"run"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "model output")
}

func TestReportEndpoints(t *testing.T) {
	srv := testServer(t, &fakeClient{
		analyzeRes: &generation.AnalysisResult{OriginalTokenCount: 100, OptimizedTokenCount: 40},
	})

	// Empty CSV export signals no content
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/report.csv", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Bad window
	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/report?window=fortnight", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/analyze", `{"username":"alice","prompt":"a long prompt"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/report?window=all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_savings":60`)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/report.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "prompt-optimizer-report.csv")
	assert.Contains(t, rec.Body.String(), `"alice",1,0,100,40,60,0.000021`)
}

func TestClearDataEndpoint(t *testing.T) {
	srv := testServer(t, &fakeClient{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/users", `{"name":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodDelete, "/api/data", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "alice")
}
