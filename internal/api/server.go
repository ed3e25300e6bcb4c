package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/arihantchoudhary/sasha-pilots/internal/conversations"
	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
	"github.com/arihantchoudhary/sasha-pilots/internal/metrics"
	"github.com/arihantchoudhary/sasha-pilots/internal/panel"
)

// Store is the transcript-provider surface the server needs.
type Store interface {
	ListConversations(ctx context.Context) (elevenlabs.ConversationList, error)
	GetConversation(ctx context.Context, id string) (*elevenlabs.ConversationDetails, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Generator is the text-generation surface the server needs. EmailContent
// produces whatever this dashboard mails out (agenda summary or space fact).
type Generator interface {
	AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error)
	Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error)
	Agenda(ctx context.Context, discussionContent string) (string, error)
	EmailContent(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error)
}

// Mailer sends one fully-rendered message.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// EmailConfig is the variant-specific email surface.
type EmailConfig struct {
	DefaultRecipient string
	Subject          string
	// ResponseField names the content field in the email endpoint's
	// response: "summary" for matei, "spaceFact" for sasha.
	ResponseField string
	// Body renders generated content into the final message body.
	Body func(content string) string
}

// Deps carries everything a Server is wired with. Store, Generator, and
// Mailer may be nil when the corresponding credential is absent; their
// endpoints then fail closed with an explicit 500.
type Deps struct {
	Service   string
	Store     Store
	Generator Generator
	Mailer    Mailer
	Email     EmailConfig
	Metrics   *metrics.Metrics
}

type Server struct {
	service string
	store   Store
	gen     Generator
	mailer  Mailer
	email   EmailConfig
	metrics *metrics.Metrics
	ctrl    *conversations.Controller
	panel   *panel.Registry
	router  chi.Router
	port    int
}

func NewServer(d Deps, port int) *Server {
	srv := &Server{
		service: d.Service,
		store:   d.Store,
		gen:     d.Generator,
		mailer:  d.Mailer,
		email:   d.Email,
		metrics: d.Metrics,
		port:    port,
	}

	if d.Store != nil {
		srv.ctrl = conversations.NewController(d.Store)
	}
	srv.panel = panel.NewRegistry(storeFetcher{d.Store}, genAdapter{d.Generator}, d.Mailer, d.Email.Subject, d.Email.Body)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(srv.observe)

	r.Route("/api", func(r chi.Router) {
		r.Get("/conversations", srv.handleListConversations)
		r.Route("/conversations/{conversationID}", func(r chi.Router) {
			r.Get("/", srv.handleGetConversation)
			r.Delete("/", srv.handleDeleteConversation)
			r.Post("/question", srv.handleRowQuestion)
			r.Post("/summary", srv.handleRowSummary)
			r.Post("/email/preview", srv.handleRowEmailPreview)
			r.Post("/email/send", srv.handleRowEmailSend)
			r.Post("/email/cancel", srv.handleRowEmailCancel)
		})
		r.Post("/analyze", srv.handleAnalyze)
		r.Post("/generate-summary", srv.handleGenerateSummary)
		r.Post("/gemini-template", srv.handleGeminiTemplate)
		r.Post("/space-fact-email", srv.handleSpaceFactEmail)
	})
	r.Get("/health", srv.handleHealth)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	srv.router = r
	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("starting HTTP API", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// observe tags each request with a uuid and records a request counter.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if s.metrics != nil {
			s.metrics.ObserveRequest(pattern, ww.Status())
		}
		slog.Debug("request served",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "sasha-pilots",
		"dashboard": s.service,
	})
}

// handleListConversations refreshes the authoritative list and applies the
// filter criteria from the query string. With no criteria the full sorted
// list passes through unchanged.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}

	if err := s.ctrl.Load(r.Context()); err != nil {
		s.upstreamError(w, "elevenlabs", "list conversations", err)
		return
	}

	q := r.URL.Query()
	criteria := conversations.Criteria{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		Agent:     q.Get("agent"),
		Success:   q.Get("success"),
		DateRange: q.Get("date_range"),
		ViewMode:  q.Get("view"),
	}

	cursor, hasMore := s.ctrl.Cursor()
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": s.ctrl.Visible(criteria),
		"next_cursor":   cursor,
		"has_more":      hasMore,
	})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	id := chi.URLParam(r, "conversationID")

	details, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		s.upstreamError(w, "elevenlabs", "get conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	id := chi.URLParam(r, "conversationID")

	if err := s.ctrl.Delete(r.Context(), id); err != nil {
		s.upstreamError(w, "elevenlabs", "delete conversation", err)
		return
	}
	s.panel.Remove(id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	var req struct {
		Transcript []elevenlabs.TranscriptTurn `json:"transcript"`
		Question   string                      `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Transcript == nil {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	answer, err := s.gen.AnswerQuestion(r.Context(), req.Transcript, req.Question)
	if err != nil {
		s.upstreamError(w, "gemini", "answer question", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

// handleGenerateSummary never short-circuits on an empty transcript; the
// provider is always asked.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	var req struct {
		Transcript []elevenlabs.TranscriptTurn `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.gen.Summarize(r.Context(), req.Transcript)
	if err != nil {
		s.upstreamError(w, "gemini", "generate summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleGeminiTemplate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	var req struct {
		DiscussionContent string `json:"discussionContent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DiscussionContent == "" {
		writeError(w, http.StatusBadRequest, "discussionContent is required")
		return
	}

	analysis, err := s.gen.Agenda(r.Context(), req.DiscussionContent)
	if err != nil {
		s.upstreamError(w, "gemini", "generate agenda", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// handleSpaceFactEmail generates this dashboard's email content for a
// conversation and mails it. Configuration is checked up front: no outbound
// call is attempted with a credential missing.
func (s *Server) handleSpaceFactEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversationId"`
		Recipient      string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}

	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}
	if s.mailer == nil {
		writeError(w, http.StatusInternalServerError, "MAILGUN_API_KEY not found")
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient
	}
	if recipient == "" {
		writeError(w, http.StatusInternalServerError, "EMAIL_RECIPIENTS not found")
		return
	}

	content, err := s.emailContent(r.Context(), req.ConversationID)
	if err != nil {
		s.upstreamError(w, "gemini", "generate email content", err)
		return
	}

	if err := s.mailer.Send(r.Context(), recipient, s.email.Subject, s.email.Body(content)); err != nil {
		s.upstreamError(w, "mailgun", "send email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		s.email.ResponseField: content,
		"recipient":           recipient,
	})
}

// emailContent reuses the row's cached summary when one exists, otherwise
// generates fresh content from the transcript. The two upstream calls are
// independent; a later send failure does not roll anything back.
func (s *Server) emailContent(ctx context.Context, id string) (string, error) {
	if cached := s.panel.Row(id).Summary(); cached != "" {
		return cached, nil
	}

	details, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get conversation: %w", err)
	}
	return s.gen.EmailContent(ctx, details.Transcript)
}

func (s *Server) handleRowQuestion(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	id := chi.URLParam(r, "conversationID")
	answer, err := s.panel.Row(id).Ask(r.Context(), req.Question)
	if errors.Is(err, panel.ErrBusy) {
		writeError(w, http.StatusConflict, "a question is already in flight for this conversation")
		return
	}
	if err != nil {
		s.upstreamError(w, "gemini", "answer question", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func (s *Server) handleRowSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	id := chi.URLParam(r, "conversationID")
	summary, err := s.panel.Row(id).GenerateSummary(r.Context())
	if err != nil {
		s.upstreamError(w, "gemini", "generate summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleRowEmailPreview(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "ELEVENLABS_API_KEY not found")
		return
	}
	if s.gen == nil {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY not found")
		return
	}

	var req struct {
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient
	}

	row := s.panel.Row(chi.URLParam(r, "conversationID"))
	row.OpenEmail()
	row.SetRecipient(recipient)

	preview, err := row.Preview(r.Context())
	if errors.Is(err, panel.ErrBusy) {
		writeError(w, http.StatusConflict, "a preview is already in flight for this conversation")
		return
	}
	if err != nil {
		s.upstreamError(w, "gemini", "generate preview", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preview": preview, "recipient": recipient})
}

func (s *Server) handleRowEmailSend(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		writeError(w, http.StatusInternalServerError, "MAILGUN_API_KEY not found")
		return
	}

	row := s.panel.Row(chi.URLParam(r, "conversationID"))
	err := row.Send(r.Context())
	if errors.Is(err, panel.ErrNotSendable) {
		writeError(w, http.StatusBadRequest, "recipient and preview are required before send")
		return
	}
	if err != nil {
		s.upstreamError(w, "mailgun", "send email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRowEmailCancel(w http.ResponseWriter, r *http.Request) {
	s.panel.Row(chi.URLParam(r, "conversationID")).CancelEmail()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// upstreamError logs the real failure server-side and surfaces a fixed
// generic message.
func (s *Server) upstreamError(w http.ResponseWriter, upstream, op string, err error) {
	slog.Error(op+" failed", "upstream", upstream, "error", err)
	if s.metrics != nil {
		s.metrics.ObserveUpstreamError(upstream)
	}
	writeError(w, http.StatusInternalServerError, "operation failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeFetcher narrows Store to the panel's fetch interface while tolerating
// a nil store (rows for a credential-less store are never reached).
type storeFetcher struct{ store Store }

func (f storeFetcher) GetConversation(ctx context.Context, id string) (*elevenlabs.ConversationDetails, error) {
	if f.store == nil {
		return nil, fmt.Errorf("transcript store not configured")
	}
	return f.store.GetConversation(ctx, id)
}

// genAdapter narrows Generator to the panel's surface with the same nil guard.
type genAdapter struct{ gen Generator }

func (g genAdapter) AnswerQuestion(ctx context.Context, transcript []elevenlabs.TranscriptTurn, question string) (string, error) {
	if g.gen == nil {
		return "", fmt.Errorf("generator not configured")
	}
	return g.gen.AnswerQuestion(ctx, transcript, question)
}

func (g genAdapter) Summarize(ctx context.Context, transcript []elevenlabs.TranscriptTurn) (string, error) {
	if g.gen == nil {
		return "", fmt.Errorf("generator not configured")
	}
	return g.gen.Summarize(ctx, transcript)
}
