// Package config assembles the typed runtime configuration from the
// environment. Vendor keys are optional at boot; the capability
// endpoint reports what is actually configured.
package config

import (
	"quinn-backend/internal/infrastructure/env"
)

type Config struct {
	Addr    string
	BaseURL string

	DatabaseURL string

	GroqAPIKey string
	GroqModel  string

	MailgunAPIKey     string
	MailgunDomain     string
	MailgunSigningKey string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string

	RapidAPIKey string
	JinaAPIKey  string

	BrowserControlURL string
	BrowserHeadless   bool

	LogLevel string
}

func Load() *Config {
	e := env.NewEnvService()

	addr := e.Get("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	baseURL := e.Get("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	model := e.Get("GROQ_MODEL")
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	logLevel := e.Get("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Addr:    addr,
		BaseURL: baseURL,

		DatabaseURL: e.Get("DATABASE_URL"),

		GroqAPIKey: e.Get("GROQ_API_KEY"),
		GroqModel:  model,

		MailgunAPIKey:     e.Get("MAILGUN_API_KEY"),
		MailgunDomain:     e.Get("MAILGUN_DOMAIN"),
		MailgunSigningKey: e.Get("MAILGUN_WEBHOOK_SIGNING_KEY"),

		TwilioAccountSID: e.Get("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  e.Get("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:  e.Get("TWILIO_FROM_PHONE"),

		RapidAPIKey: e.Get("RAPIDAPI_KEY"),
		JinaAPIKey:  e.Get("JINA_API_KEY"),

		BrowserControlURL: e.Get("BROWSER_CONTROL_URL"),
		BrowserHeadless:   e.GetBool("BROWSER_HEADLESS", true),

		LogLevel: logLevel,
	}
}

// HasBrowser reports whether form filling can run. A control URL is
// optional; without one a local browser is launched, which only needs
// the LLM key.
func (c *Config) HasBrowser() bool { return c.GroqAPIKey != "" }

func (c *Config) HasLLM() bool { return c.GroqAPIKey != "" }

func (c *Config) HasStore() bool { return c.DatabaseURL != "" }

func (c *Config) HasMailgun() bool { return c.MailgunAPIKey != "" && c.MailgunDomain != "" }

func (c *Config) HasTwilio() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromPhone != ""
}
