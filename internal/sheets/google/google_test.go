package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/core"
)

func TestToValues(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2024, 1, 2), Amount: 12.5, Category: core.Expense, Description: "lunch"},
		{Date: core.NewDate(2024, 1, 3), Amount: 100, Category: core.Income, Description: ""},
	}
	values := toValues(txs, core.CanonicalDateFormat())
	if len(values) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(values))
	}
	if values[0][0] != "date" || values[0][3] != "description" {
		t.Fatalf("unexpected header: %v", values[0])
	}
	if values[1][0] != "02-01-2024" || values[1][1] != 12.5 || values[1][2] != "Expense" || values[1][3] != "lunch" {
		t.Fatalf("unexpected row: %v", values[1])
	}
}

func TestToValuesEmptyTable(t *testing.T) {
	values := toValues(nil, core.CanonicalDateFormat())
	if len(values) != 1 {
		t.Fatalf("expected header only, got %v", values)
	}
}

func TestLoadCredentials(t *testing.T) {
	if _, err := loadCredentials(Config{}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	b, err := loadCredentials(Config{ServiceAccountJSON: `{"type":"service_account"}`, ServiceAccountFile: "/ignored"})
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("inline JSON should win: %s, %v", b, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err = loadCredentials(Config{ServiceAccountFile: path})
	if err != nil || string(b) != `{"from":"file"}` {
		t.Fatalf("unexpected file credentials: %s, %v", b, err)
	}

	if _, err := loadCredentials(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "nope.json")}); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestNewExporterRequiresSpreadsheetID(t *testing.T) {
	if _, err := NewExporter(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without spreadsheet ID")
	}
}

func TestReplaceAllWithoutService(t *testing.T) {
	e := &Exporter{}
	if err := e.ReplaceAll(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestA1RangeQuotesSheetName(t *testing.T) {
	cases := []struct {
		sheet, cells, want string
	}{
		{"Transactions", "A:D", "'Transactions'!A:D"},
		{"My Ledger", "A1:D3", "'My Ledger'!A1:D3"},
		{"Bob's 2024", "A:D", "'Bob''s 2024'!A:D"},
	}
	for _, tc := range cases {
		if got := a1Range(tc.sheet, tc.cells); got != tc.want {
			t.Fatalf("a1Range(%q, %q) = %q, want %q", tc.sheet, tc.cells, got, tc.want)
		}
	}
}
