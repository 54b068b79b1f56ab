package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	var c Config
	c.Normalize()
	if c.Port != "5432" || c.SSLMode != "disable" || c.MaxConnections != 4 || c.MigrationsDir != "migrations" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestURLEscapesCredentials(t *testing.T) {
	c := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss/word", Name: "assets", SSLMode: "disable"}
	got := c.URL()
	want := "postgres://bot:p%40ss%2Fword@db:5432/assets?sslmode=disable"
	if got != want {
		t.Fatalf("URL() = %q, want %q", got, want)
	}
}

func TestUpFilesBetween(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_submitter_index.up.sql", "000001_asset_rows.up.sql", "000001_asset_rows.down.sql", "000003_later.up.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files := readUpFiles(dir)
	if len(files) != 3 || files[0] != "000001_asset_rows.up.sql" {
		t.Fatalf("files = %v", files)
	}
	got := files.between(1, 2)
	if len(got) != 1 || got[0] != "000002_submitter_index.up.sql" {
		t.Fatalf("between(1, 2) = %v", got)
	}
	if got := files.between(3, 3); len(got) != 0 {
		t.Fatalf("expected nothing applied, got %v", got)
	}
	if v := fileVersion("garbage.up.sql"); v != 0 {
		t.Fatalf("version = %d", v)
	}
}
