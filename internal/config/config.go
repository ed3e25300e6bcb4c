package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port int

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string

	GeminiAPIKey   string
	GeminiEndpoint string
	GeminiModel    string

	MailgunAPIKey  string
	MailgunDomain  string
	MailgunBaseURL string

	EmailFrom      string
	EmailRecipient string
	EmailSubject   string

	LogLevel string
	LogFile  string
}

func Load() Config {
	return Config{
		Port:              envInt("DASHBOARD_PORT", 8080),
		ElevenLabsAPIKey:  envStr("ELEVENLABS_API_KEY", ""),
		ElevenLabsBaseURL: envStr("ELEVENLABS_BASE_URL", ""),
		GeminiAPIKey:      envStr("GEMINI_API_KEY", ""),
		GeminiEndpoint:    envStr("GEMINI_ENDPOINT", ""),
		GeminiModel:       envStr("GEMINI_MODEL", ""),
		MailgunAPIKey:     envStr("MAILGUN_API_KEY", ""),
		MailgunDomain:     envStr("MAILGUN_DOMAIN", ""),
		MailgunBaseURL:    envStr("MAILGUN_BASE_URL", ""),
		EmailFrom:         envStr("EMAIL_FROM", ""),
		EmailRecipient:    envStr("EMAIL_RECIPIENTS", ""),
		EmailSubject:      envStr("EMAIL_SUBJECT", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		LogFile:           envStr("LOG_FILE", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
