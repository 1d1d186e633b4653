package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/insurancebot/core/logger"
)

// RunMigrations applies every up migration found at the root of migrations.
func RunMigrations(cfg Config, migrations fs.FS) error {
	ctx := context.Background()
	wait := time.Duration(cfg.WaitSeconds) * time.Second
	if wait <= 0 {
		wait = 30 * time.Second
	}
	if err := WaitForPostgres(ctx, cfg.DSN(), wait); err != nil {
		logger.Error(ctx, "db.migrate", "db.wait",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	files := listMigrationFiles(migrations)
	if preview, truncated := logger.SummarizeStrings(files, 6); preview != "" {
		logger.Debug(ctx, "db.migrate", "migrate.resolve",
			slog.Int("files_total", len(files)),
			slog.String("files_preview", preview),
			slog.Bool("files_truncated", truncated),
		)
	}

	src, err := iofs.New(migrations, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DSN())
	if err != nil {
		logger.Error(ctx, "db.migrate", "migrate.init",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "migrate.apply",
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	applied := selectApplied(files, uint64(fromVer), uint64(toVer))
	logger.Info(ctx, "db.migrate", "migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

func listMigrationFiles(fsys fs.FS) []string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
