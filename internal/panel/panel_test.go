package panel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
	"github.com/arihantchoudhary/sasha-pilots/internal/testutil"
)

func testBody(content string) string {
	return "email: " + content
}

func setup(t *testing.T) (*Registry, *testutil.MockStore, *testutil.MockGenerator, *testutil.MockMailer) {
	t.Helper()
	ms := testutil.NewMockStore()
	ms.SetDetails(&elevenlabs.ConversationDetails{
		Conversation: elevenlabs.Conversation{ConversationID: "c1"},
		Transcript: []elevenlabs.TranscriptTurn{
			{Role: "user", Message: "What is the deadline?"},
			{Role: "agent", Message: "Next Friday."},
		},
	})
	gen := &testutil.MockGenerator{Answer: "Next Friday.", Summary: "three takeaways"}
	mailer := &testutil.MockMailer{}
	reg := NewRegistry(ms, gen, mailer, "Subject", testBody)
	return reg, ms, gen, mailer
}

func TestRegistry_RowLifecycle(t *testing.T) {
	reg, _, _, _ := setup(t)

	r1 := reg.Row("c1")
	if r1 == nil {
		t.Fatal("expected row")
	}
	if reg.Row("c1") != r1 {
		t.Error("expected same row on second access")
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 row, got %d", reg.Len())
	}

	reg.Remove("c1")
	if reg.Len() != 0 {
		t.Errorf("expected 0 rows after remove, got %d", reg.Len())
	}
	if reg.Row("c1") == r1 {
		t.Error("expected a fresh row after remove")
	}
}

func TestToggleQA(t *testing.T) {
	reg, _, _, _ := setup(t)
	row := reg.Row("c1")

	if row.QA() != QACollapsed {
		t.Fatalf("expected collapsed initially, got %v", row.QA())
	}
	if got := row.ToggleQA(); got != QAExpanded {
		t.Errorf("expected expanded after toggle, got %v", got)
	}
	if got := row.ToggleQA(); got != QACollapsed {
		t.Errorf("expected collapsed after second toggle, got %v", got)
	}
}

func TestAsk_AnswersAndKeepsAnswerThroughCollapse(t *testing.T) {
	reg, _, _, _ := setup(t)
	row := reg.Row("c1")
	row.ToggleQA()

	answer, err := row.Ask(context.Background(), "When is the deadline?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Next Friday." {
		t.Errorf("expected answer, got %q", answer)
	}
	if row.QA() != QAAnswered {
		t.Errorf("expected answered state, got %v", row.QA())
	}

	// Collapse and re-expand: the answer survives.
	row.ToggleQA()
	if got := row.ToggleQA(); got != QAAnswered {
		t.Errorf("expected answered when re-expanding, got %v", got)
	}
	if row.Answer() != "Next Friday." {
		t.Errorf("answer lost across collapse: %q", row.Answer())
	}
}

func TestAsk_ErrorReturnsToExpanded(t *testing.T) {
	reg, _, gen, _ := setup(t)
	gen.AnswerErr = errors.New("upstream down")
	row := reg.Row("c1")

	if _, err := row.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if row.QA() != QAExpanded {
		t.Errorf("expected expanded (re-askable) after error, got %v", row.QA())
	}

	// Re-ask succeeds.
	gen.AnswerErr = nil
	if _, err := row.Ask(context.Background(), "q"); err != nil {
		t.Errorf("re-ask failed: %v", err)
	}
}

func TestAsk_OneOutstandingPerRow(t *testing.T) {
	reg, ms, gen, _ := setup(t)
	row := reg.Row("c1")

	// Block the first Ask inside the generator until released.
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingGenerator{inner: gen, started: started, release: release}
	row.gen = blocking

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		row.Ask(context.Background(), "first")
	}()

	<-started
	if _, err := row.Ask(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for concurrent ask, got %v", err)
	}
	close(release)
	wg.Wait()

	if ms.GetCalls != 1 {
		t.Errorf("expected 1 transcript fetch, got %d", ms.GetCalls)
	}
}

// blockingGenerator parks AnswerQuestion until released.
type blockingGenerator struct {
	inner   Generator
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingGenerator) AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.inner.AnswerQuestion(ctx, transcript, question)
}

func (b *blockingGenerator) Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	return b.inner.Summarize(ctx, transcript)
}

func TestGenerateSummary_CachesForSession(t *testing.T) {
	reg, ms, gen, _ := setup(t)
	row := reg.Row("c1")

	first, err := row.GenerateSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "three takeaways" {
		t.Errorf("expected summary, got %q", first)
	}

	// Second invocation is a no-op returning the cache.
	second, err := row.GenerateSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Errorf("expected cached summary, got %q", second)
	}
	if gen.SummaryCalls != 1 {
		t.Errorf("expected 1 generation call, got %d", gen.SummaryCalls)
	}
	if ms.GetCalls != 1 {
		t.Errorf("expected 1 transcript fetch, got %d", ms.GetCalls)
	}
}

func TestGenerateSummary_FailureIsRetryable(t *testing.T) {
	reg, _, gen, _ := setup(t)
	gen.SummaryErr = errors.New("upstream down")
	row := reg.Row("c1")

	if _, err := row.GenerateSummary(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if row.Summary() != "" {
		t.Errorf("failed generation must not cache: %q", row.Summary())
	}

	gen.SummaryErr = nil
	summary, err := row.GenerateSummary(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if summary != "three takeaways" {
		t.Errorf("expected summary on retry, got %q", summary)
	}
}

func TestEmailFlow_PreviewReusesCachedSummary(t *testing.T) {
	reg, _, gen, _ := setup(t)
	row := reg.Row("c1")

	if _, err := row.GenerateSummary(context.Background()); err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	row.OpenEmail()
	row.SetRecipient("dest@example.com")
	preview, err := row.Preview(context.Background())
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	if preview != "email: three takeaways" {
		t.Errorf("unexpected preview %q", preview)
	}
	if gen.SummaryCalls != 1 {
		t.Errorf("preview must reuse the cached summary, got %d generation calls", gen.SummaryCalls)
	}
	if row.Email() != EmailPreviewed {
		t.Errorf("expected previewed state, got %v", row.Email())
	}
}

func TestEmailFlow_PreviewGeneratesWhenNoCache(t *testing.T) {
	reg, _, gen, _ := setup(t)
	row := reg.Row("c1")

	row.OpenEmail()
	if _, err := row.Preview(context.Background()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if gen.SummaryCalls != 1 {
		t.Errorf("expected preview to generate a summary, got %d calls", gen.SummaryCalls)
	}
	if row.Summary() != "three takeaways" {
		t.Error("preview-generated summary must be cached")
	}
}

func TestEmailFlow_SendGating(t *testing.T) {
	reg, _, _, mailer := setup(t)
	row := reg.Row("c1")

	row.OpenEmail()
	if row.CanSend() {
		t.Error("send must be disabled with no recipient and no preview")
	}
	if err := row.Send(context.Background()); !errors.Is(err, ErrNotSendable) {
		t.Errorf("expected ErrNotSendable, got %v", err)
	}

	row.SetRecipient("dest@example.com")
	if row.CanSend() {
		t.Error("send must stay disabled until previewed")
	}

	if _, err := row.Preview(context.Background()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !row.CanSend() {
		t.Error("send must be enabled with recipient and preview set")
	}
	if mailer.SentCount() != 0 {
		t.Errorf("nothing should have been sent yet, got %d", mailer.SentCount())
	}
}

func TestEmailFlow_SendSuccessClearsModal(t *testing.T) {
	reg, _, _, mailer := setup(t)
	row := reg.Row("c1")

	row.OpenEmail()
	row.SetRecipient("dest@example.com")
	if _, err := row.Preview(context.Background()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if err := row.Send(context.Background()); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if mailer.SentCount() != 1 {
		t.Fatalf("expected 1 sent mail, got %d", mailer.SentCount())
	}
	sent := mailer.Sent[0]
	if sent.Recipient != "dest@example.com" || sent.Subject != "Subject" {
		t.Errorf("unexpected envelope: %+v", sent)
	}
	if !strings.HasPrefix(sent.Body, "email: ") {
		t.Errorf("body not rendered through template: %q", sent.Body)
	}

	if row.Email() != EmailClosed {
		t.Errorf("modal must close after success, got %v", row.Email())
	}
	if row.CanSend() {
		t.Error("fields must clear after success")
	}
	// Summary cache survives the send.
	if row.Summary() == "" {
		t.Error("summary cache must survive the send")
	}
}

func TestEmailFlow_SendFailureKeepsModalOpen(t *testing.T) {
	reg, _, _, mailer := setup(t)
	mailer.SendErr = errors.New("upstream down")
	row := reg.Row("c1")

	row.OpenEmail()
	row.SetRecipient("dest@example.com")
	if _, err := row.Preview(context.Background()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if err := row.Send(context.Background()); err == nil {
		t.Fatal("expected send error")
	}

	if row.Email() != EmailPreviewed {
		t.Errorf("modal must stay open after failure, got %v", row.Email())
	}
	if !row.CanSend() {
		t.Error("fields must survive a failed send")
	}
}

func TestEmailFlow_CancelClearsFieldsKeepsSummary(t *testing.T) {
	reg, _, _, _ := setup(t)
	row := reg.Row("c1")

	row.OpenEmail()
	row.SetRecipient("dest@example.com")
	if _, err := row.Preview(context.Background()); err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	row.CancelEmail()
	if row.Email() != EmailClosed {
		t.Errorf("expected closed after cancel, got %v", row.Email())
	}
	if row.CanSend() {
		t.Error("fields must clear on cancel")
	}
	if row.Summary() == "" {
		t.Error("summary cache must survive cancel")
	}
}
