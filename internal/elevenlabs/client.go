package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production convai API host.
const DefaultBaseURL = "https://api.elevenlabs.io"

// Client talks to the conversational-AI transcript provider.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a transcript-provider client. The API key is required;
// baseURL falls back to DefaultBaseURL when empty.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs: API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ListConversations fetches all conversation summaries.
func (c *Client) ListConversations(ctx context.Context) (ConversationList, error) {
	var list ConversationList
	if err := c.get(ctx, "/v1/convai/conversations", &list); err != nil {
		return ConversationList{}, err
	}
	return list, nil
}

// GetConversation fetches the full record, transcript included.
func (c *Client) GetConversation(ctx context.Context, id string) (*ConversationDetails, error) {
	var details ConversationDetails
	if err := c.get(ctx, "/v1/convai/conversations/"+url.PathEscape(id), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// DeleteConversation removes a conversation upstream.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/convai/conversations/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs delete: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("elevenlabs returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("elevenlabs returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
