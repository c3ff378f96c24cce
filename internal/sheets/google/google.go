// Package google mirrors the ledger table into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Config selects the spreadsheet tab and credentials.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
	DateFormat         core.DateFormat
}

// Exporter replaces a sheet tab with the current table.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	format        core.DateFormat
}

var _ ledger.Sink = (*Exporter)(nil)

// NewExporter creates a Sheets client authenticated with a service account.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", sheet)

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		format:        cfg.DateFormat,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case cfg.ServiceAccountFile != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// ReplaceAll clears columns A:D of the tab and writes the header plus txs.
func (e *Exporter) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := a1Range(e.sheet, "A:D")
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := toValues(txs, e.format)
	writeRange := a1Range(e.sheet, fmt.Sprintf("A1:D%d", len(values)))
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Google Sheets mirror replaced", "sheet", e.sheet, "rows", len(txs))
	return nil
}

// a1Range quotes the tab name so names with spaces or quotes stay valid.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// toValues lays out the table as the file stores it: header first, dates in
// the ledger's text form, amounts as numbers.
func toValues(txs []core.Transaction, format core.DateFormat) [][]any {
	values := make([][]any, 0, len(txs)+1)
	header := make([]any, len(ledger.Columns))
	for i, c := range ledger.Columns {
		header[i] = c
	}
	values = append(values, header)
	for _, tx := range txs {
		values = append(values, []any{format.Format(tx.Date), tx.Amount, string(tx.Category), tx.Description})
	}
	return values
}
