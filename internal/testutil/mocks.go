package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

// MockStore is a thread-safe in-memory transcript provider for testing.
type MockStore struct {
	mu sync.Mutex

	List    elevenlabs.ConversationList
	Details map[string]*elevenlabs.ConversationDetails

	ListErr   error
	GetErr    error
	DeleteErr error

	ListCalls   int
	GetCalls    int
	DeleteCalls int
	Deleted     []string
}

func NewMockStore() *MockStore {
	return &MockStore{
		Details: make(map[string]*elevenlabs.ConversationDetails),
	}
}

func (m *MockStore) ListConversations(_ context.Context) (elevenlabs.ConversationList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return elevenlabs.ConversationList{}, m.ListErr
	}
	return m.List, nil
}

func (m *MockStore) GetConversation(_ context.Context, id string) (*elevenlabs.ConversationDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	d, ok := m.Details[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return d, nil
}

func (m *MockStore) DeleteConversation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

// SetDetails seeds a full conversation record.
func (m *MockStore) SetDetails(d *elevenlabs.ConversationDetails) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Details[d.ConversationID] = d
}

// MockGenerator is a scripted text generator for testing. Each operation
// returns its fixed response or error and records the inputs it saw.
type MockGenerator struct {
	mu sync.Mutex

	Answer   string
	Summary  string
	Analysis string
	Content  string

	AnswerErr   error
	SummaryErr  error
	AnalysisErr error
	ContentErr  error

	AnswerCalls  int
	SummaryCalls int
	ContentCalls int

	LastQuestion   string
	LastTranscript []elevenlabs.TranscriptTurn
	LastDiscussion string
}

func (g *MockGenerator) AnswerQuestion(_ context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.AnswerCalls++
	g.LastTranscript = transcript
	g.LastQuestion = question
	if g.AnswerErr != nil {
		return "", g.AnswerErr
	}
	return g.Answer, nil
}

func (g *MockGenerator) Summarize(_ context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SummaryCalls++
	g.LastTranscript = transcript
	if g.SummaryErr != nil {
		return "", g.SummaryErr
	}
	return g.Summary, nil
}

func (g *MockGenerator) Agenda(_ context.Context, discussionContent string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.LastDiscussion = discussionContent
	if g.AnalysisErr != nil {
		return "", g.AnalysisErr
	}
	return g.Analysis, nil
}

func (g *MockGenerator) EmailContent(_ context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ContentCalls++
	g.LastTranscript = transcript
	if g.ContentErr != nil {
		return "", g.ContentErr
	}
	return g.Content, nil
}

// MockMailer records sent messages.
type MockMailer struct {
	mu sync.Mutex

	SendErr error

	Sent []SentMail
}

// SentMail is one recorded Send call.
type SentMail struct {
	Recipient string
	Subject   string
	Body      string
}

func (m *MockMailer) Send(_ context.Context, recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentMail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// SentCount returns how many messages were sent.
func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
