// Package di wires the application graph: one shared set of vendor
// clients plus a per-request browser session factory for form filling.
package di

import (
	"context"
	"fmt"

	"quinn-backend/internal/application/port/input"
	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/config"
	"quinn-backend/internal/infrastructure/browser/rodagent"
	"quinn-backend/internal/infrastructure/discovery/rapidapi"
	"quinn-backend/internal/infrastructure/llm/groq"
	"quinn-backend/internal/infrastructure/logger"
	"quinn-backend/internal/infrastructure/mail/mailgun"
	"quinn-backend/internal/infrastructure/scrape/jina"
	"quinn-backend/internal/infrastructure/sms/twilio"
	"quinn-backend/internal/infrastructure/store/postgres"
	"quinn-backend/internal/jobs"
	"quinn-backend/internal/transport/httpapi"
	"quinn-backend/internal/usecase/contacts"
	"quinn-backend/internal/usecase/discovery"
	"quinn-backend/internal/usecase/formfill"
	"quinn-backend/internal/usecase/intake"
	"quinn-backend/internal/usecase/mailclass"
	"quinn-backend/internal/usecase/notify"
	"quinn-backend/internal/usecase/outreach"
)

type Container struct {
	Logger   output.LoggerPort
	Store    output.Store
	Handlers *httpapi.Handlers
	Jobs     *jobs.Processor
}

// NewContainer builds the full graph. The datastore is the backbone and
// is required; vendor keys (LLM, SMS, mail, search) may be absent, in
// which case the corresponding operations fail at call time and the
// capability endpoint says so up front.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	if cfg.DatabaseURL == "" {
		log.Close()
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	store, err := postgres.New(ctx, pool, log)
	if err != nil {
		pool.Close()
		log.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	llm := groq.New(groq.DefaultConfig(cfg.GroqAPIKey, cfg.GroqModel))

	sms := twilio.New(twilio.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromPhone:  cfg.TwilioFromPhone,
		Logger:     log,
	})
	mailer := mailgun.New(mailgun.Config{
		Domain: cfg.MailgunDomain,
		APIKey: cfg.MailgunAPIKey,
		From:   fmt.Sprintf("Quinn <quinn@%s>", cfg.MailgunDomain),
		Logger: log,
	})
	finder := rapidapi.New(rapidapi.Config{APIKey: cfg.RapidAPIKey, Logger: log})
	scraper := jina.New(jina.Config{APIKey: cfg.JinaAPIKey})

	notifier := notify.New(sms, store, cfg.BaseURL, log)
	classifier := mailclass.NewClassifier(llm, log)
	inbound := mailclass.NewProcessor(store, classifier, notifier, log)
	intakeSvc := intake.New(store, llm, log)
	discoveryRunner := discovery.New(store, finder, log)
	extractor := contacts.New(store, scraper, llm, log)
	outreachSvc := outreach.New(store, mailer, cfg.MailgunDomain, log)

	processor := jobs.New(store, notifier, discoveryRunner, extractor, log)

	handlers := httpapi.NewHandlers(httpapi.HandlersConfig{
		Store:         store,
		Intake:        intakeSvc,
		Inbound:       inbound,
		Notifier:      notifier,
		Outreach:      outreachSvc,
		FillerFactory: fillerFactory(cfg, llm, log),
		SigningKey:    cfg.MailgunSigningKey,
		ReplyDomain:   cfg.MailgunDomain,
		Capabilities: httpapi.Capabilities{
			Browser: cfg.HasBrowser(),
			LLM:     cfg.HasLLM(),
			Store:   cfg.HasStore(),
		},
		Logger: log,
	})

	return &Container{
		Logger:   log,
		Store:    store,
		Handlers: handlers,
		Jobs:     processor,
	}, nil
}

// fillerFactory builds a fresh browser session per fill request; the
// release func tears the session down with the response.
func fillerFactory(cfg *config.Config, llm output.LLMPort, log output.LoggerPort) httpapi.FillerFactory {
	return func(ctx context.Context) (input.FormFiller, func(), error) {
		browserCfg := rodagent.DefaultConfig()
		browserCfg.ControlURL = cfg.BrowserControlURL
		browserCfg.Headless = cfg.BrowserHeadless

		session, err := rodagent.NewSession(ctx, browserCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser session: %w", err)
		}

		agent := rodagent.NewAgent(session, llm, log)
		loop := formfill.New(session, agent, formfill.NewKeywordProbe(), log, formfill.DefaultConfig())
		return loop, session.Close, nil
	}
}

func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
