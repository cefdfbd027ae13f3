package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"oasis/config"
	"oasis/metrics"
)

// JudgeResult is the synchronous Judge0 response. Only the output fields are
// relevant, the judge is queried with base64 encoding disabled and wait=true.
type JudgeResult struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// Output returns stdout, falling back to stderr and then the compiler output
// so the caller always gets the most relevant text the run produced.
func (r *JudgeResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.CompileOutput
}

type judgeRequest struct {
	SourceCode string `json:"source_code"`
	LanguageId int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type Judge0Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	apiHost string
}

func NewJudge0Client() *Judge0Client {
	cfg := config.Env()
	return &Judge0Client{
		client:  &http.Client{Timeout: cfg.JudgeTimeout},
		baseURL: cfg.JudgeURL,
		apiKey:  cfg.RapidAPIKey,
		apiHost: cfg.RapidAPIHost,
	}
}

// NewJudge0ClientWithURL is used by tests to point the client at a local server.
func NewJudge0ClientWithURL(baseURL string, timeout time.Duration) *Judge0Client {
	return &Judge0Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Execute submits a single (source, language, stdin) triple and waits for the
// captured output.
func (c *Judge0Client) Execute(ctx context.Context, sourceCode string, languageId int, stdin string) (*JudgeResult, error) {
	body, err := json.Marshal(judgeRequest{
		SourceCode: sourceCode,
		LanguageId: languageId,
		Stdin:      stdin,
	})
	if err != nil {
		return nil, err
	}
	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	request, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("X-RapidAPI-Key", c.apiKey)
		request.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	metrics.JudgeRequestCounter.Inc()
	start := time.Now()
	response, err := c.client.Do(request)
	metrics.JudgeRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JudgeErrorCounter.Inc()
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		metrics.JudgeErrorCounter.Inc()
		return nil, fmt.Errorf("judge service returned status %d", response.StatusCode)
	}
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		metrics.JudgeErrorCounter.Inc()
		return nil, err
	}
	result := &JudgeResult{}
	if err := json.Unmarshal(responseBody, result); err != nil {
		metrics.JudgeErrorCounter.Inc()
		return nil, fmt.Errorf("malformed judge response: %w", err)
	}
	return result, nil
}
