package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/ledger/csvfile"
	"ledger/internal/log"
	"ledger/internal/storage"
)

func quietFactory() Factory {
	return NewFactory(log.New(log.Config{Output: io.Discard}))
}

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Fatalf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Fatalf("sheets is not a primary backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 3 || got[0] != "csv" {
		t.Fatalf("unexpected backend strings %v", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = "memory"
	app.SeedFile = "seed.csv"
	app.DateLayout = "2006-01-02"

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend || cfg.SeedFile != "seed.csv" || cfg.DateFormat.Layout != "2006-01-02" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	app.DataBackend = "postgres"
	_, err = FromAppConfig(app)
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "must be one of csv, sqlite, memory") {
		t.Fatalf("error should list the valid backends: %v", err)
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"csv ok", Config{Type: CSVBackend, LedgerFile: "x.csv"}, false},
		{"csv without file", Config{Type: CSVBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite mirroring itself", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db", MirrorSQLite: true}, true},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sheets without credentials", Config{Type: MemoryBackend, GoogleSpreadsheetID: "abc"}, true},
		{"unknown", Config{Type: "nope"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateBackendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	res, err := quietFactory().CreateBackend(context.Background(), Config{
		Type:       CSVBackend,
		LedgerFile: path,
		DateFormat: core.CanonicalDateFormat(),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	s, ok := res.Store.(*csvfile.Store)
	if !ok {
		t.Fatalf("expected csv store, got %T", res.Store)
	}
	if s.Path() != path {
		t.Fatalf("unexpected path %s", s.Path())
	}
	if res.Publisher != nil {
		t.Fatalf("no publisher expected without AMQP URL")
	}
}

func TestCreateBackendSQLite(t *testing.T) {
	ctx := context.Background()
	res, err := quietFactory().CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
		DateFormat:   core.CanonicalDateFormat(),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected sqlite store, got %T", res.Store)
	}
	out, err := res.Store.Append(ctx, core.Transaction{Date: core.NewDate(2024, 1, 1), Amount: 1, Category: core.Income})
	if err != nil || out != ledger.Success {
		t.Fatalf("append: outcome=%v err=%v", out, err)
	}
}

func TestCreateSinks(t *testing.T) {
	ctx := context.Background()
	f := quietFactory()

	res, err := f.CreateSinks(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateSinks: %v", err)
	}
	if len(res.Sinks) != 0 {
		t.Fatalf("expected no sinks, got %d", len(res.Sinks))
	}

	res, err = f.CreateSinks(ctx, Config{
		Type:         CSVBackend,
		LedgerFile:   "x.csv",
		MirrorSQLite: true,
		SQLiteDBPath: filepath.Join(t.TempDir(), "mirror.db"),
		DateFormat:   core.CanonicalDateFormat(),
	})
	if err != nil {
		t.Fatalf("CreateSinks: %v", err)
	}
	defer res.Cleanup()
	if len(res.Sinks) != 1 || res.Sinks[0].Name != "sqlite" {
		t.Fatalf("expected the sqlite sink, got %+v", res.Sinks)
	}
}
