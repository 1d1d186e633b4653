// Package cmd is the shared entry point of bot binaries: load config, bootstrap, run until a signal.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/insurancebot/core/buildinfo"
	coreconfig "github.com/m3rciful/insurancebot/core/config"
	"github.com/m3rciful/insurancebot/core/logger"
	coretelegram "github.com/m3rciful/insurancebot/core/telegram"
)

const defaultConfigEnvVar = "CONFIG_PATH"

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	// ConfigEnvVar names the variable holding the config path; defaults to CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
	// Signals overrides the shutdown signals (SIGINT and SIGTERM).
	Signals []os.Signal
}

// Run loads configuration, bootstraps the Telegram app and runs the bot until a shutdown signal.
// A stop caused by a signal is a clean exit and returns nil.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		return fmt.Errorf("cmd: LoadConfig is required")
	}
	if opts.Bootstrap == nil {
		return fmt.Errorf("cmd: Bootstrap is required")
	}

	path := configPath(opts)
	log.Printf("loading config: %q", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	application, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	wrapLifecycle(&runOpts, time.Now())

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := signal.NotifyContext(context.Background(), signals...)
	defer cancel()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	if err := run(ctx, runOpts); err != nil && !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

func configPath(opts Options) string {
	env := opts.ConfigEnvVar
	if env == "" {
		env = defaultConfigEnvVar
	}
	if p := os.Getenv(env); p != "" {
		return p
	}
	return opts.DefaultConfigPath
}

// wrapLifecycle logs readiness after the app's OnStart and shutdown before its OnStop.
func wrapLifecycle(runOpts *coretelegram.RunOptions, startedAt time.Time) {
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.String("status", "ok"),
			slog.String("version", buildinfo.String()),
			slog.Duration("startup_duration", time.Since(startedAt)),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown")
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}
}
