// Package app assembles the insurance bot: infrastructure, adapters, the conversation engine
// and the Telegram routes that feed it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/m3rciful/insurancebot/core/bootstrap"
	"github.com/m3rciful/insurancebot/core/logger"
	coretelegram "github.com/m3rciful/insurancebot/core/telegram"
	appconfig "github.com/m3rciful/insurancebot/internal/config"
	"github.com/m3rciful/insurancebot/internal/conversation"
	"github.com/m3rciful/insurancebot/internal/events"
	"github.com/m3rciful/insurancebot/internal/extraction"
	"github.com/m3rciful/insurancebot/internal/generation"
	"github.com/m3rciful/insurancebot/internal/store"
	"github.com/m3rciful/insurancebot/migrations"
)

// App owns the running bot and everything it closes on shutdown.
type App struct {
	cfg    *appconfig.Config
	store  store.Store
	engine *conversation.Engine

	services *services
	closers  []func() error
}

// Bootstrap initializes logging, storage, recognition, generation and events from cfg.
func Bootstrap(cfg *appconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	ctx := context.Background()

	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	var closers []func() error
	fail := func(err error) (*App, error) {
		closeAll(ctx, closers)
		return nil, err
	}

	var st store.Store
	if res.DB != nil {
		st = store.NewPostgres(res.DB)
		closers = append(closers, res.DB.Close)
	} else {
		logger.Warn(ctx, "store", "store.memory",
			slog.String("status", "skip"),
			slog.String("cause", "conversations are kept in memory and lost on restart"),
		)
		st = store.NewMemory()
	}

	provider, err := extraction.NewProvider(ctx, cfg.Extraction)
	if err != nil {
		return fail(fmt.Errorf("app: extraction provider: %w", err))
	}
	extractor := extraction.New(provider, time.Duration(cfg.Extraction.TimeoutSeconds)*time.Second)
	closers = append(closers, extractor.Close)

	generator, err := generation.New(ctx, cfg.Generation, nil)
	if err != nil {
		return fail(fmt.Errorf("app: generation: %w", err))
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.Events.URL != "" {
		n, err := events.ConnectNATS(cfg.Events.URL, cfg.Events.Token, cfg.Events.SubjectPrefix)
		if err != nil {
			return fail(fmt.Errorf("app: events: %w", err))
		}
		publisher = n
		closers = append(closers, n.Close)
	}

	a, err := newApp(cfg, st, extractor, generator, publisher)
	if err != nil {
		return fail(err)
	}
	a.closers = closers

	logger.Info(ctx, "app", "app.bootstrap",
		slog.String("status", "ok"),
		slog.String("provider", provider.Name()),
		slog.String("model", generator.Model()),
		slog.String("mode", cfg.Conversation.StepPolicy),
	)
	return a, nil
}

func newApp(cfg *appconfig.Config, st store.Store, ex conversation.Extractor, gen generation.Generator, pub events.Publisher) (*App, error) {
	instructions, err := conversation.LoadInstructions(cfg.Conversation.InstructionsFile, cfg.Conversation.PriceUSD)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	policy, err := conversation.PolicyByName(cfg.Conversation.StepPolicy)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	tempDir := cfg.Extraction.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return nil, fmt.Errorf("app: photo dir: %w", err)
	}

	engine, err := conversation.New(conversation.Options{
		Store:        st,
		Extractor:    ex,
		Generator:    gen,
		Events:       pub,
		Policy:       policy,
		Instructions: instructions,
		PriceUSD:     cfg.Conversation.PriceUSD,
		HistoryChars: cfg.Conversation.HistoryChars,
		TempDir:      tempDir,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, store: st, engine: engine}, nil
}

// TelegramRunOptions describes the routes, middleware and lifecycle hooks of the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, seq, routes := a.routes()
	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Sequencer:   seq,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), seq, a.handleLimited),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, _ coretelegram.Runtime) error {
	a.services = startServices(ctx, a.cfg, a.store.Ping)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	if a.services != nil {
		a.services.stop(ctx)
	}
	closeAll(ctx, a.closers)
	return nil
}

func closeAll(ctx context.Context, closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn(ctx, "app", "app.close",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
}
