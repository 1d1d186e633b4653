package database

import (
	"testing"
	"testing/fstest"
)

func TestListMigrationFilesAndSelectApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_index.up.sql":              {Data: []byte("SELECT 1;")},
		"0001_create_conversations.up.sql":   {Data: []byte("SELECT 1;")},
		"0001_create_conversations.down.sql": {Data: []byte("SELECT 1;")},
		"README.md":                          {Data: []byte("notes")},
	}
	files := listMigrationFiles(fsys)
	if len(files) != 2 || files[0] != "0001_create_conversations.up.sql" || files[1] != "0002_add_index.up.sql" {
		t.Fatalf("unexpected files: %v", files)
	}

	if got := selectApplied(files, 0, 2); len(got) != 2 {
		t.Fatalf("applied from 0 to 2 = %v", got)
	}
	if got := selectApplied(files, 1, 2); len(got) != 1 || got[0] != "0002_add_index.up.sql" {
		t.Fatalf("applied from 1 to 2 = %v", got)
	}
	if got := selectApplied(files, 2, 2); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p@ss", Name: "insurance"}
	if got, want := cfg.DSN(), "postgres://bot:p%40ss@db:5432/insurance?sslmode=disable"; got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
	if !cfg.Enabled() {
		t.Fatal("expected config with host to be enabled")
	}

	withURL := Config{URL: "postgres://u:p@remote:6543/prod?sslmode=require", Host: "ignored"}
	if withURL.DSN() != withURL.URL {
		t.Fatalf("URL should win, got %q", withURL.DSN())
	}
	host, port, name := withURL.Target()
	if host != "remote" || port != "6543" || name != "prod" {
		t.Fatalf("target = %s %s %s", host, port, name)
	}

	if (Config{}).Enabled() {
		t.Fatal("empty config should be disabled")
	}
}
