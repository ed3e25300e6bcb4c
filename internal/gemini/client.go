package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

const (
	// DefaultEndpoint is the generateContent API host.
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"

	// FallbackAnswer is returned when the provider yields no candidates for a question.
	FallbackAnswer = "No answer generated"
	// FallbackSummary is returned when the provider yields no candidates for a summary.
	FallbackSummary = "No summary generated"
	// FallbackAnalysis is returned when the provider yields no candidates for an agenda.
	FallbackAnalysis = "No analysis generated"
)

// Generation parameters are fixed per deployment, not tunable per call.
const (
	genTemperature     = 0.4
	genTopK            = 40
	genTopP            = 0.95
	genMaxOutputTokens = 1024
)

// Client talks to the generative-text provider. Calls are single-shot:
// no streaming, no retry.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

// NewClient creates a generative-text client. The API key is required;
// endpoint and model fall back to the package defaults when empty.
func NewClient(apiKey, endpoint, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// AnswerQuestion asks a question against a transcript. The prompt embeds every
// turn verbatim; the model is constrained to transcript content only.
func (c *Client) AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error) {
	return c.generate(ctx, answerPrompt(transcript, question), FallbackAnswer)
}

// Summarize produces a summary of the transcript in the given style. An empty
// transcript still issues a request; the provider decides what to say.
func (c *Client) Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn, style SummaryStyle) (string, error) {
	return c.generate(ctx, summaryPrompt(transcript, style), FallbackSummary)
}

// Agenda turns free-form discussion notes into a short meeting agenda.
func (c *Client) Agenda(ctx context.Context, discussionContent string) (string, error) {
	return c.generate(ctx, agendaPrompt(discussionContent), FallbackAnalysis)
}

// SpaceFact produces one space fact loosely tied to the call.
func (c *Client) SpaceFact(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	return c.generate(ctx, spaceFactPrompt(transcript), FallbackSummary)
}

// generate runs a single prompt/response round trip and extracts the first
// candidate's text, or the given fallback when the candidate list is empty.
func (c *Client) generate(ctx context.Context, prompt, fallback string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     genTemperature,
			TopK:            genTopK,
			TopP:            genTopP,
			MaxOutputTokens: genMaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// Key travels in the query string, per the provider's auth scheme.
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("gemini returned %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fallback, nil
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}
