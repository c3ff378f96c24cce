package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
)

type harness struct {
	env  *Env
	out  *bytes.Buffer
	path string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Defaults()
	cfg.LedgerFile = filepath.Join(t.TempDir(), "finance_data.csv")
	logger := log.New(log.Config{Output: io.Discard})
	out := &bytes.Buffer{}
	return &harness{
		env: &Env{
			Config:  cfg,
			Factory: backend.NewFactory(logger),
			Logger:  logger,
			Out:     out,
			ErrOut:  io.Discard,
			Today:   func() core.Date { return core.NewDate(2024, 3, 15) },
		},
		out:  out,
		path: cfg.LedgerFile,
	}
}

// run executes one command and returns what it printed.
func (h *harness) run(t *testing.T, args ...string) string {
	t.Helper()
	h.out.Reset()
	if err := Run(context.Background(), h.env, args); err != nil {
		t.Fatalf("ledger %s: %v", strings.Join(args, " "), err)
	}
	return h.out.String()
}

func TestInitCreatesHeaderOnlyFile(t *testing.T) {
	h := newHarness(t)
	if got := h.run(t, "init"); got != "Ledger initialized\n" {
		t.Fatalf("unexpected output %q", got)
	}
	b, err := os.ReadFile(h.path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "date,amount,category,description\n" {
		t.Fatalf("unexpected file %q", b)
	}
}

func TestAddDefaultsToToday(t *testing.T) {
	h := newHarness(t)
	if got := h.run(t, "add", "-amount", "12.5", "-category", "E", "-description", "lunch"); got != "Entry added successfully\n" {
		t.Fatalf("unexpected output %q", got)
	}
	b, _ := os.ReadFile(h.path)
	if !strings.Contains(string(b), "15-03-2024,12.5,Expense,lunch\n") {
		t.Fatalf("row not written: %q", b)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	cases := map[string][]string{
		"bad date":         {"add", "-date", "2024-03-01", "-amount", "1", "-category", "I"},
		"negative amount":  {"add", "-amount", "-3", "-category", "I"},
		"missing amount":   {"add", "-category", "I"},
		"unknown category": {"add", "-amount", "1", "-category", "Gift"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			if err := Run(context.Background(), h.env, args); err == nil {
				t.Fatalf("expected error")
			}
			if _, err := os.Stat(h.path); !os.IsNotExist(err) {
				t.Fatalf("ledger file must not be created on invalid input")
			}
		})
	}
}

func TestUpdateAndDeleteMessages(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-date", "01-03-2024", "-amount", "100", "-category", "Income", "-description", "salary")
	h.run(t, "add", "-date", "02-03-2024", "-amount", "20", "-category", "Expense", "-description", "food")

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"update", "-index", "1", "-date", "03-03-2024", "-amount", "25", "-category", "E"}, "Entry updated successfully\n"},
		{[]string{"update", "-index", "2", "-date", "03-03-2024", "-amount", "25", "-category", "E"}, "Invalid index. No entry updated.\n"},
		{[]string{"delete", "-index", "5"}, "Invalid index. No entry deleted.\n"},
		{[]string{"delete", "-index", "0"}, "Entry deleted successfully\n"},
		{[]string{"delete", "-index", "0"}, "Entry deleted successfully\n"},
		{[]string{"delete", "-index", "0"}, "No data available to delete.\n"},
	}
	for _, tc := range cases {
		if got := h.run(t, tc.args...); got != tc.want {
			t.Fatalf("ledger %v: got %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestDeleteMissingFile(t *testing.T) {
	h := newHarness(t)
	if got := h.run(t, "delete", "-index", "0"); got != "No data available to delete.\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestQuery(t *testing.T) {
	h := newHarness(t)
	h.run(t, "add", "-date", "01-03-2024", "-amount", "1000", "-category", "I", "-description", "salary")
	h.run(t, "add", "-date", "05-03-2024", "-amount", "120.456", "-category", "E", "-description", "groceries")
	h.run(t, "add", "-date", "20-04-2024", "-amount", "9", "-category", "E", "-description", "cinema")

	got := h.run(t, "query", "-start", "01-03-2024", "-end", "31-03-2024")
	if !strings.HasPrefix(got, "Transaction from 01-03-2024 to 31-03-2024\n") {
		t.Fatalf("missing range header:\n%s", got)
	}
	if !strings.Contains(got, "groceries") || strings.Contains(got, "cinema") {
		t.Fatalf("unexpected rows:\n%s", got)
	}
	wantSummary := "Summary:\nTotal Income: $1,000.00\nTotal Expense: $120.46\nNet Saving: $879.54\n"
	if !strings.HasSuffix(got, wantSummary) {
		t.Fatalf("unexpected summary:\n%s", got)
	}

	got = h.run(t, "query", "-start", "01-01-2023", "-end", "31-01-2023")
	if got != "No transaction found in the given date range.\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got = h.run(t, "query", "-start", "01-01-2024", "-end", "31-12-2024", "-match", "cnema", "-chart")
	if !strings.Contains(got, "cinema") || strings.Contains(got, "salary") {
		t.Fatalf("match filter not applied:\n%s", got)
	}
	if !strings.Contains(got, "20-04-2024") || !strings.Contains(got, "9.00") {
		t.Fatalf("series not printed:\n%s", got)
	}
}

func TestQueryRequiresValidBounds(t *testing.T) {
	h := newHarness(t)
	if err := Run(context.Background(), h.env, []string{"query", "-start", "01-01-2024"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := Run(context.Background(), h.env, []string{"query", "-start", "2024-01-01", "-end", "31-01-2024"}); err == nil {
		t.Fatalf("expected date error")
	}
}

func TestList(t *testing.T) {
	h := newHarness(t)
	if got := h.run(t, "list"); got != "No transactions recorded.\n" {
		t.Fatalf("unexpected output %q", got)
	}
	h.run(t, "add", "-date", "01-03-2024", "-amount", "1", "-category", "I", "-description", "first")
	h.run(t, "add", "-date", "02-03-2024", "-amount", "2", "-category", "E", "-description", "second")
	got := h.run(t, "list")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows:\n%s", got)
	}
	if !strings.HasPrefix(lines[2], "1 ") || !strings.Contains(lines[2], "second") {
		t.Fatalf("second row should carry index 1: %q", lines[2])
	}
}

func TestMirrorToSQLite(t *testing.T) {
	h := newHarness(t)
	h.env.Config.MirrorSQLite = true
	h.env.Config.SQLiteDBPath = filepath.Join(t.TempDir(), "mirror.db")
	h.run(t, "add", "-date", "01-03-2024", "-amount", "1", "-category", "I")
	h.run(t, "add", "-date", "02-03-2024", "-amount", "2", "-category", "E")

	if got := h.run(t, "mirror"); got != "Mirrored 2 transactions to sqlite\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMirrorWithoutSinks(t *testing.T) {
	h := newHarness(t)
	if err := Run(context.Background(), h.env, []string{"mirror"}); err == nil {
		t.Fatalf("expected error without sinks")
	}
}

func TestUsage(t *testing.T) {
	h := newHarness(t)
	if err := Run(context.Background(), h.env, nil); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := Run(context.Background(), h.env, []string{"frobnicate"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := Run(context.Background(), h.env, []string{"delete"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("missing -index should be a usage error, got %v", err)
	}
	if err := Run(context.Background(), h.env, []string{"list", "-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}
