package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/insurancebot/core/config"
	coredatabase "github.com/m3rciful/insurancebot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.DB != nil || connected {
		t.Fatal("database should not be touched when unconfigured")
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}

	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected logger error, got %v", err)
	}

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, boom },
		Migrate: func(coredatabase.Config, fs.FS) error {
			t.Fatal("migrate must not run after a failed connect")
			return nil
		},
		Migrations: fstest.MapFS{},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected connect error, got %v", err)
	}
}
