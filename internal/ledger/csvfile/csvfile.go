// Package csvfile stores the transaction table in a comma-separated file
// with the header date,amount,category,description.
//
// Every call reads the whole file; Update and Delete rewrite it in full. The
// file is not locked, so only one process may use it at a time.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

type Store struct {
	path   string
	format core.DateFormat
}

var _ ledger.Store = (*Store)(nil)

func New(path string, format core.DateFormat) *Store {
	return &Store{path: path, format: format}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Initialize(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat ledger file: %w", err)
	}
	if err := s.rewrite(nil); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Created ledger file", "path", s.path)
	return nil
}

// Append writes one record at the end of the file, creating it first when
// it is missing.
func (s *Store) Append(ctx context.Context, tx core.Transaction) (ledger.Outcome, error) {
	if err := s.Initialize(ctx); err != nil {
		return ledger.Success, err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return ledger.Success, fmt.Errorf("open ledger file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return ledger.Success, fmt.Errorf("stat ledger file: %w", err)
	}
	w := csv.NewWriter(f)
	// an existing empty file reads as an empty table and still needs its header
	if info.Size() == 0 {
		if err := w.Write(ledger.Columns); err != nil {
			f.Close()
			return ledger.Success, fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(s.record(tx)); err != nil {
		f.Close()
		return ledger.Success, fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return ledger.Success, fmt.Errorf("flush record: %w", err)
	}
	if err := f.Close(); err != nil {
		return ledger.Success, fmt.Errorf("close ledger file: %w", err)
	}
	return ledger.Success, nil
}

func (s *Store) Update(ctx context.Context, index int, tx core.Transaction) (ledger.Outcome, error) {
	txs, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.InvalidIndex, nil
	}
	if err != nil {
		return ledger.InvalidIndex, err
	}
	if !ledger.ValidIndex(index, len(txs)) {
		return ledger.InvalidIndex, nil
	}
	txs[index] = tx
	if err := s.rewrite(txs); err != nil {
		return ledger.Success, err
	}
	return ledger.Success, nil
}

func (s *Store) Delete(ctx context.Context, index int) (ledger.Outcome, error) {
	txs, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.NoData, nil
	}
	if err != nil {
		return ledger.NoData, err
	}
	if len(txs) == 0 {
		return ledger.NoData, nil
	}
	if !ledger.ValidIndex(index, len(txs)) {
		return ledger.InvalidIndex, nil
	}
	if err := s.rewrite(ledger.RemoveAt(txs, index)); err != nil {
		return ledger.Success, err
	}
	return ledger.Success, nil
}

func (s *Store) Query(ctx context.Context, start, end string) ([]ledger.Entry, bool, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	return ledger.Select(s.format, entries, start, end)
}

// Load reads the whole table. A missing file is an empty table.
func (s *Store) Load(ctx context.Context) ([]ledger.Entry, error) {
	txs, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ledger.Number(txs), nil
}

func (s *Store) read() ([]core.Transaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f, s.format)
}

// rewrite replaces the file with header plus txs through a temporary file in
// the same directory.
func (s *Store) rewrite(txs []core.Transaction) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(ledger.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		if err := w.Write(s.record(tx)); err != nil {
			tmp.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *Store) record(tx core.Transaction) []string {
	return []string{
		s.format.Format(tx.Date),
		core.FormatAmount(tx.Amount),
		string(tx.Category),
		tx.Description,
	}
}

// decode reads a table, locating columns by header name.
func decode(r io.Reader, format core.DateFormat) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]int, len(ledger.Columns))
	for i, name := range ledger.Columns {
		cols[i] = indexOf(header, name)
		if cols[i] == -1 {
			return nil, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", name, header)
		}
	}

	var txs []core.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		date, err := format.Parse(safeGet(rec, cols[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineOf(cr, rec, cols[0]), err)
		}
		amount, err := core.ParseAmount(safeGet(rec, cols[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w %q", lineOf(cr, rec, cols[1]), err, safeGet(rec, cols[1]))
		}
		txs = append(txs, core.Transaction{
			Date:        date,
			Amount:      amount,
			Category:    core.Category(safeGet(rec, cols[2])),
			Description: safeGet(rec, cols[3]),
		})
	}
	return txs, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// lineOf returns the file line on which field i of the last record starts.
func lineOf(cr *csv.Reader, rec []string, i int) int {
	if i >= len(rec) {
		i = 0
	}
	line, _ := cr.FieldPos(i)
	return line
}

func safeGet(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
