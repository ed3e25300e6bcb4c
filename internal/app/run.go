package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arihantchoudhary/sasha-pilots/internal/api"
	"github.com/arihantchoudhary/sasha-pilots/internal/config"
	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
	"github.com/arihantchoudhary/sasha-pilots/internal/gemini"
	"github.com/arihantchoudhary/sasha-pilots/internal/mailgun"
	"github.com/arihantchoudhary/sasha-pilots/internal/metrics"
)

// Run builds the adapters and serves one dashboard until SIGINT/SIGTERM.
// A missing credential leaves the matching adapter unconfigured; its
// endpoints fail closed with an explicit 500 instead of aborting startup.
func Run(cfg config.Config, profile Profile) {
	slog.Info("dashboard starting", "dashboard", profile.Name, "port", cfg.Port)

	deps := api.Deps{
		Service: profile.Name,
		Metrics: metrics.New(profile.Name),
	}

	if cfg.ElevenLabsAPIKey != "" {
		store, err := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL)
		if err != nil {
			slog.Error("failed to create transcript client", "error", err)
			os.Exit(1)
		}
		deps.Store = store
	} else {
		slog.Warn("ELEVENLABS_API_KEY not set, conversation endpoints disabled")
	}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiEndpoint, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to create generation client", "error", err)
			os.Exit(1)
		}
		deps.Generator = NewGenerator(client, profile)
	} else {
		slog.Warn("GEMINI_API_KEY not set, generation endpoints disabled")
	}

	if cfg.MailgunAPIKey != "" && cfg.MailgunDomain != "" {
		mailer, err := mailgun.NewMailer(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.EmailFrom, cfg.MailgunBaseURL)
		if err != nil {
			slog.Error("failed to create mailer", "error", err)
			os.Exit(1)
		}
		deps.Mailer = mailer
	} else {
		slog.Warn("MAILGUN_API_KEY or MAILGUN_DOMAIN not set, email sending disabled")
	}

	subject := cfg.EmailSubject
	if subject == "" {
		subject = profile.EmailSubject
	}
	deps.Email = api.EmailConfig{
		DefaultRecipient: cfg.EmailRecipient,
		Subject:          subject,
		ResponseField:    profile.EmailField,
		Body:             profile.EmailBody,
	}

	srv := api.NewServer(deps, cfg.Port)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("dashboard ready", "dashboard", profile.Name, "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	slog.Info("shutting down", "signal", sig)
}
