package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"translation-agent/backend/internal/config"
	"translation-agent/backend/internal/stream"
)

// ErrIncomplete is returned when the stream ends before a complete or error
// event.
var ErrIncomplete = errors.New("stream ended before completion")

var keyHeaders = map[string]string{
	config.ProviderOpenAI:     "X-OpenAI-Key",
	config.ProviderGemini:     "X-Gemini-Key",
	config.ProviderAnthropic:  "X-Anthropic-Key",
	config.ProviderCompatible: "X-Compatible-Key",
}

// APIError is a non-200 response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Request describes one translation.
type Request struct {
	Text    string
	Source  string
	Target  string
	Country string
	LLM     string
	Model   string
	// Format is "sse" or "text"; empty lets the server choose.
	Format string
	// APIKeys are per-provider key overrides sent as headers.
	APIKeys map[string]string
}

// Result holds the final buffers of a run.
type Result struct {
	Initial    string
	Reflection string
	Improved   string
	Cached     bool
}

// UpdateFunc receives the full buffer of a stage each time it changes.
type UpdateFunc func(stage, buffer string)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Translate runs a translation and blocks until the stream ends. On an
// in-band error the partial buffers are returned alongside the error.
func (c *Client) Translate(ctx context.Context, req Request, onUpdate UpdateFunc) (Result, error) {
	q := url.Values{}
	q.Set("text", req.Text)
	setIf(q, "source", req.Source)
	setIf(q, "target", req.Target)
	setIf(q, "country", req.Country)
	setIf(q, "llm", req.LLM)
	setIf(q, "model", req.Model)
	setIf(q, "format", req.Format)

	demux, err := c.stream(ctx, "/api/translate", q, req.Format, req.APIKeys, onUpdate)
	res := Result{
		Initial:    demux.Buffer(stream.StageInitial),
		Reflection: demux.Buffer(stream.StageReflect),
		Improved:   demux.Buffer(stream.StageImprove),
		Cached:     demux.Cached(),
	}
	return res, err
}

// CompletionRequest describes a free-form completion.
type CompletionRequest struct {
	Prompt  string
	System  string
	LLM     string
	Model   string
	Format  string
	APIKeys map[string]string
}

// Complete runs a free-form completion and returns its text.
func (c *Client) Complete(ctx context.Context, req CompletionRequest, onUpdate UpdateFunc) (string, error) {
	q := url.Values{}
	setIf(q, "prompt", req.Prompt)
	setIf(q, "system", req.System)
	setIf(q, "llm", req.LLM)
	setIf(q, "model", req.Model)
	setIf(q, "format", req.Format)

	demux, err := c.stream(ctx, "/api/complete", q, req.Format, req.APIKeys, onUpdate)
	return demux.Buffer(stream.StageCompletion), err
}

func (c *Client) stream(ctx context.Context, path string, q url.Values, format string, keys map[string]string, onUpdate UpdateFunc) (*stream.Demuxer, error) {
	demux := stream.NewDemuxer()

	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return demux, fmt.Errorf("build request: %w", err)
	}
	if format == stream.FormatText {
		httpReq.Header.Set("Accept", "text/plain")
	} else {
		httpReq.Header.Set("Accept", stream.ContentTypeSSE)
	}
	for provider, key := range keys {
		if header, ok := keyHeaders[provider]; ok && key != "" {
			httpReq.Header.Set(header, key)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return demux, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return demux, readAPIError(resp)
	}

	dec := stream.NewDecoder(resp)
	defer dec.Close()

	for dec.Next() {
		ev := dec.Event()
		if stage := demux.Apply(ev); stage != "" && onUpdate != nil {
			onUpdate(stage, demux.Buffer(stage))
		}
		if err := demux.Err(); err != nil {
			return demux, err
		}
		if demux.Complete() {
			return demux, nil
		}
	}
	if err := dec.Err(); err != nil {
		return demux, fmt.Errorf("read stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return demux, err
	}
	return demux, ErrIncomplete
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
