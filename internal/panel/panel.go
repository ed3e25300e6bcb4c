// Package panel holds the per-conversation interaction state for a dashboard
// session: the Q&A box, the on-demand summary, and the email modal. Each
// conversation row owns its own state record; rows never share anything.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

// Generator is the text-generation surface a row needs.
type Generator interface {
	AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error)
	Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error)
}

// Mailer sends one fully-rendered message.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// DetailsFetcher fetches the full conversation record on demand.
type DetailsFetcher interface {
	GetConversation(ctx context.Context, id string) (*elevenlabs.ConversationDetails, error)
}

// ErrBusy is returned when an operation is rejected because one is already in
// flight for the same row.
var ErrBusy = errors.New("panel: request already in flight")

// ErrNotSendable is returned when Send is attempted before both recipient and
// preview are set.
var ErrNotSendable = errors.New("panel: recipient and preview required before send")

// QAState is the question-answering sub-machine state.
type QAState int

const (
	QACollapsed QAState = iota
	QAExpanded
	QAAwaiting
	QAAnswered
)

// EmailState is the email-modal sub-machine state.
type EmailState int

const (
	EmailClosed EmailState = iota
	EmailOpen
	EmailPreviewing
	EmailPreviewed
)

// Row is the interaction state for one conversation. The three sub-machines
// are independent; only the row mutex is shared, and it is never held across
// a network call.
type Row struct {
	id       string
	fetcher  DetailsFetcher
	gen      Generator
	mailer   Mailer
	subject  string
	bodyFunc func(content string) string

	mu sync.Mutex

	qaState  QAState
	question string
	answer   string

	summary    string
	generating bool

	emailState EmailState
	recipient  string
	preview    string
}

// ToggleQA flips between collapsed and expanded. Collapsing keeps the last
// answer; an in-flight question keeps running and lands on this row.
func (r *Row) ToggleQA() QAState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.qaState == QACollapsed {
		if r.answer != "" {
			r.qaState = QAAnswered
		} else {
			r.qaState = QAExpanded
		}
	} else {
		r.qaState = QACollapsed
	}
	return r.qaState
}

// Ask submits a question against this conversation's transcript. One
// outstanding question per row; a second Ask while in flight returns ErrBusy.
// On failure the row returns to expanded and is re-askable.
func (r *Row) Ask(ctx context.Context, question string) (string, error) {
	r.mu.Lock()
	if r.qaState == QAAwaiting {
		r.mu.Unlock()
		return "", ErrBusy
	}
	r.qaState = QAAwaiting
	r.question = question
	r.mu.Unlock()

	answer, err := r.askUpstream(ctx, question)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.qaState = QAExpanded
		return "", err
	}
	r.answer = answer
	r.qaState = QAAnswered
	return answer, nil
}

func (r *Row) askUpstream(ctx context.Context, question string) (string, error) {
	details, err := r.fetcher.GetConversation(ctx, r.id)
	if err != nil {
		return "", err
	}
	return r.gen.AnswerQuestion(ctx, details.Transcript, question)
}

// Question returns the last question submitted for this row.
func (r *Row) Question() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.question
}

// Answer returns the last answer shown for this row.
func (r *Row) Answer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answer
}

// QA returns the current Q&A state.
func (r *Row) QA() QAState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.qaState
}

// GenerateSummary produces and caches the row summary. A call while a summary
// is already generated or in flight is a no-op returning the cached text;
// failures are silent in the sense that the row simply stays retryable.
func (r *Row) GenerateSummary(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.summary != "" || r.generating {
		cached := r.summary
		r.mu.Unlock()
		return cached, nil
	}
	r.generating = true
	r.mu.Unlock()

	summary, err := r.summarizeUpstream(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generating = false
	if err != nil {
		slog.Warn("summary generation failed", "conversation_id", r.id, "error", err)
		return "", err
	}
	r.summary = summary
	return summary, nil
}

func (r *Row) summarizeUpstream(ctx context.Context) (string, error) {
	details, err := r.fetcher.GetConversation(ctx, r.id)
	if err != nil {
		return "", err
	}
	return r.gen.Summarize(ctx, details.Transcript)
}

// Summary returns the cached summary, empty if none has been generated.
func (r *Row) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// OpenEmail opens the email modal with an empty recipient.
func (r *Row) OpenEmail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailState == EmailClosed {
		r.emailState = EmailOpen
	}
}

// SetRecipient records the recipient field of the open modal.
func (r *Row) SetRecipient(recipient string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipient = recipient
}

// Preview renders the email body, reusing the cached summary when present and
// generating one first otherwise.
func (r *Row) Preview(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.emailState == EmailPreviewing {
		r.mu.Unlock()
		return "", ErrBusy
	}
	r.emailState = EmailPreviewing
	r.mu.Unlock()

	content, err := r.GenerateSummary(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.emailState = EmailOpen
		return "", err
	}
	r.preview = r.bodyFunc(content)
	r.emailState = EmailPreviewed
	return r.preview, nil
}

// CanSend reports whether both recipient and preview are set.
func (r *Row) CanSend() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recipient != "" && r.preview != ""
}

// Send submits the previewed message. The modal closes and its fields clear
// only after a success response; on failure everything stays put.
func (r *Row) Send(ctx context.Context) error {
	r.mu.Lock()
	if r.recipient == "" || r.preview == "" {
		r.mu.Unlock()
		return ErrNotSendable
	}
	recipient, body := r.recipient, r.preview
	r.mu.Unlock()

	if err := r.mailer.Send(ctx, recipient, r.subject, body); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailState = EmailClosed
	r.recipient = ""
	r.preview = ""
	return nil
}

// CancelEmail closes the modal and clears its fields. The cached summary is
// kept; only the modal state is discarded.
func (r *Row) CancelEmail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailState = EmailClosed
	r.recipient = ""
	r.preview = ""
}

// Email returns the current email-modal state.
func (r *Row) Email() EmailState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailState
}

// Registry owns the rows for a dashboard session and makes row lifecycle
// explicit: rows are created on first use and dropped with their conversation.
type Registry struct {
	fetcher  DetailsFetcher
	gen      Generator
	mailer   Mailer
	subject  string
	bodyFunc func(content string) string

	mu   sync.Mutex
	rows map[string]*Row
}

// NewRegistry creates a registry wired to the given adapters. bodyFunc renders
// generated content into the final email body.
func NewRegistry(fetcher DetailsFetcher, gen Generator, mailer Mailer, subject string, bodyFunc func(content string) string) *Registry {
	return &Registry{
		fetcher:  fetcher,
		gen:      gen,
		mailer:   mailer,
		subject:  subject,
		bodyFunc: bodyFunc,
		rows:     make(map[string]*Row),
	}
}

// Row returns the state record for a conversation, creating it on first use.
func (g *Registry) Row(id string) *Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rows[id]; ok {
		return r
	}
	r := &Row{
		id:       id,
		fetcher:  g.fetcher,
		gen:      g.gen,
		mailer:   g.mailer,
		subject:  g.subject,
		bodyFunc: g.bodyFunc,
	}
	g.rows[id] = r
	return r
}

// Remove drops a row, e.g. after its conversation is deleted. A late response
// for a removed row lands on the detached record and has no visible effect.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rows, id)
}

// Len reports how many rows currently hold state.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rows)
}
