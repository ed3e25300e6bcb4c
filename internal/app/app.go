// Package app wires one dashboard variant. The matei and sasha dashboards
// share every component; a Profile carries the only differences between them:
// the summary prompt shape, what the outgoing email contains, its template,
// and the content field name in the email endpoint's response.
package app

import (
	"context"
	"fmt"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
	"github.com/arihantchoudhary/sasha-pilots/internal/gemini"
)

// Profile is a dashboard variant.
type Profile struct {
	Name         string
	SummaryStyle gemini.SummaryStyle
	// EmailField is the content field name in the email endpoint response.
	EmailField string
	// EmailSubject is used when EMAIL_SUBJECT is not configured.
	EmailSubject string
	// EmailBody renders generated content into the message body.
	EmailBody func(content string) string
	// emailContent produces what this dashboard mails out.
	emailContent func(ctx context.Context, c *gemini.Client, transcript []elevenlabs.TranscriptTurn) (string, error)
}

// Matei lists calls and emails a meeting agenda built from a 3-takeaway
// summary.
func Matei() Profile {
	return Profile{
		Name:         "matei",
		SummaryStyle: gemini.StyleTakeaways,
		EmailField:   "summary",
		EmailSubject: "Your Meeting Agenda",
		EmailBody: func(content string) string {
			return fmt.Sprintf("Hi,\n\nHere is the agenda generated from your recent call:\n\n%s\n\nSent by the matei dashboard.\n", content)
		},
		emailContent: func(ctx context.Context, c *gemini.Client, transcript []elevenlabs.TranscriptTurn) (string, error) {
			return c.Summarize(ctx, transcript, gemini.StyleTakeaways)
		},
	}
}

// Sasha lists calls with structured summaries and emails a space fact tied to
// the conversation.
func Sasha() Profile {
	return Profile{
		Name:         "sasha",
		SummaryStyle: gemini.StyleStructured,
		EmailField:   "spaceFact",
		EmailSubject: "Your Space Fact",
		EmailBody: func(content string) string {
			return fmt.Sprintf("Hello,\n\nA space fact inspired by your recent call:\n\n%s\n\nSent by the sasha dashboard.\n", content)
		},
		emailContent: func(ctx context.Context, c *gemini.Client, transcript []elevenlabs.TranscriptTurn) (string, error) {
			return c.SpaceFact(ctx, transcript)
		},
	}
}

// Generator binds a gemini client to a profile. It satisfies the API server's
// generator surface.
type Generator struct {
	client  *gemini.Client
	profile Profile
}

// NewGenerator wraps a gemini client with a profile's prompt choices.
func NewGenerator(client *gemini.Client, profile Profile) *Generator {
	return &Generator{client: client, profile: profile}
}

func (g *Generator) AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error) {
	return g.client.AnswerQuestion(ctx, transcript, question)
}

func (g *Generator) Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	return g.client.Summarize(ctx, transcript, g.profile.SummaryStyle)
}

func (g *Generator) Agenda(ctx context.Context, discussionContent string) (string, error) {
	return g.client.Agenda(ctx, discussionContent)
}

func (g *Generator) EmailContent(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	return g.profile.emailContent(ctx, g.client, transcript)
}
