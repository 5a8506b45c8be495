// Package whisper provides a client for OpenAI-compatible speech-to-text
// APIs. Requests use the multipart transcription endpoint with the
// verbose_json response format so segment timings come back.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the hosted OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Segment is one time-aligned span of the transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a parsed verbose_json transcription response.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Client defines the transcription operation.
type Client interface {
	// Transcribe converts the audio stream into text. filename hints the
	// container format to the API.
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*Result, error)
}

// Option configures the whisper client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for self-hosted servers or testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithModel overrides the transcription model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates a transcription client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   "whisper-1",
		http: &http.Client{
			// Long audio takes a while to transcribe.
			Timeout: 5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, eris.Wrap(err, "whisper: create form file")
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, eris.Wrap(err, "whisper: copy audio")
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, eris.Wrap(err, "whisper: write model field")
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, eris.Wrap(err, "whisper: write format field")
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "whisper: close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, eris.Wrap(err, "whisper: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "whisper: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "whisper: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("whisper: status %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "whisper: decode response")
	}
	return &result, nil
}
