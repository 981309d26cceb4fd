// Package generation is the client for the remote prompt-optimization
// service. Both operations are atomic, fallible black boxes: no retries,
// no rate limiting, no timeout beyond what the caller's context carries.
package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Error wraps any remote, transport, or payload failure from the
// generation service.
type Error struct {
	Op  string // "analyze" or "execute"
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// AnalysisResult is the service's answer to an analyze call. Token counts
// are estimates supplied by the service; counts it omits are filled in
// locally by the tokenizer.
type AnalysisResult struct {
	OriginalTokenCount  int64  `json:"original_token_count"`
	OptimizedPrompt     string `json:"optimized_prompt"`
	OptimizedTokenCount int64  `json:"optimized_token_count"`
	Explanation         string `json:"explanation"`
}

// Client is the narrow contract the session layer relies on.
type Client interface {
	Analyze(ctx context.Context, promptText string) (*AnalysisResult, error)
	Execute(ctx context.Context, promptText string) (string, error)
}

// Config holds the remote endpoint settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client // optional; defaults to a client with no timeout
}

// HTTPClient talks JSON to the generation service.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewHTTPClient creates a client for the service at cfg.BaseURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    hc,
	}
}

type analyzeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type executeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type executeResponse struct {
	Result string `json:"result"`
}

// Analyze requests a token-reduced rewrite of promptText.
func (c *HTTPClient) Analyze(ctx context.Context, promptText string) (*AnalysisResult, error) {
	var out AnalysisResult
	if err := c.post(ctx, "analyze", "/v1/analyze", analyzeRequest{Model: c.model, Prompt: promptText}, &out); err != nil {
		return nil, err
	}

	// The service is supposed to estimate both counts; older deployments
	// omit them, so fall back to a local estimate.
	if out.OriginalTokenCount <= 0 {
		out.OriginalTokenCount = estimateTokens(promptText)
	}
	if out.OptimizedTokenCount <= 0 {
		out.OptimizedTokenCount = estimateTokens(out.OptimizedPrompt)
	}
	return &out, nil
}

// Execute runs promptText through the model and returns the raw result text.
func (c *HTTPClient) Execute(ctx context.Context, promptText string) (string, error) {
	var out executeResponse
	if err := c.post(ctx, "execute", "/v1/execute", executeRequest{Model: c.model, Prompt: promptText}, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *HTTPClient) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Op: op, Msg: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: op, Msg: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Msg: "call service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{Op: op, Msg: fmt.Sprintf("service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Msg: "decode response", Err: err}
	}
	return nil
}
