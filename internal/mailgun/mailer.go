package mailgun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Mailgun API host.
const DefaultBaseURL = "https://api.mailgun.net"

// Mailer submits plain-text messages to the transactional email provider.
type Mailer struct {
	apiKey  string
	domain  string
	from    string
	baseURL string
	client  *http.Client
}

// NewMailer creates a mailer. API key and domain are required; baseURL falls
// back to DefaultBaseURL when empty.
func NewMailer(apiKey, domain, from, baseURL string) (*Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mailgun: API key is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("mailgun: domain is required")
	}
	if from == "" {
		from = "dashboard@" + domain
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Mailer{
		apiKey:  apiKey,
		domain:  domain,
		from:    from,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Send submits one fully-rendered plain-text message. No retry, no queueing.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"from":    m.from,
		"to":      recipient,
		"subject": subject,
		"text":    body,
	} {
		if err := w.WriteField(field, value); err != nil {
			return fmt.Errorf("write form field %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	u := fmt.Sprintf("%s/v3/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailgun returned %d", resp.StatusCode)
	}

	slog.Info("email sent", "to", recipient, "subject", subject)
	return nil
}
