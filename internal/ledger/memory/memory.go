package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Store keeps the table in process memory. It follows the same positional
// contract as the file-backed stores.
type Store struct {
	mu     sync.Mutex
	format core.DateFormat
	items  []core.Transaction
}

var _ ledger.Store = (*Store)(nil)

func New(format core.DateFormat, seed ...core.Transaction) *Store {
	s := &Store{format: format}
	if len(seed) > 0 {
		s.items = append([]core.Transaction(nil), seed...)
	}
	return s
}

// NewFromFile seeds the store from a file of date,amount,category,description
// records, quoted the way the csv ledger quotes them. Blank lines, lines
// starting with # and records that do not parse are skipped. Unquoted commas
// after the category stay part of the description. A missing file yields an
// empty store.
func NewFromFile(path string, format core.DateFormat) *Store {
	f, err := os.Open(path)
	if err != nil {
		return New(format)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	var seed []core.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(rec) < 3 {
			continue
		}
		date, err := format.Parse(strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		amount, err := core.ParseAmount(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}
		seed = append(seed, core.Transaction{
			Date:        date,
			Amount:      amount,
			Category:    core.Category(strings.TrimSpace(rec[2])),
			Description: strings.TrimSpace(strings.Join(rec[3:], ",")),
		})
	}
	return New(format, seed...)
}

// Initialize is a no-op: the table exists as soon as the store does.
func (s *Store) Initialize(_ context.Context) error {
	return nil
}

func (s *Store) Append(_ context.Context, tx core.Transaction) (ledger.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return ledger.Success, nil
}

func (s *Store) Update(_ context.Context, index int, tx core.Transaction) (ledger.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ledger.ValidIndex(index, len(s.items)) {
		return ledger.InvalidIndex, nil
	}
	s.items[index] = tx
	return ledger.Success, nil
}

func (s *Store) Delete(_ context.Context, index int) (ledger.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return ledger.NoData, nil
	}
	if !ledger.ValidIndex(index, len(s.items)) {
		return ledger.InvalidIndex, nil
	}
	s.items = ledger.RemoveAt(s.items, index)
	return ledger.Success, nil
}

func (s *Store) Query(ctx context.Context, start, end string) ([]ledger.Entry, bool, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	return ledger.Select(s.format, entries, start, end)
}

func (s *Store) Load(_ context.Context) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Number(s.items), nil
}

// ReplaceAll swaps the table for txs, which lets the store act as a mirror
// sink in tests and dry runs.
func (s *Store) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
	return nil
}
