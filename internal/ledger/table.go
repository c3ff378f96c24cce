package ledger

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"ledger/internal/core"
)

// ValidIndex reports whether index addresses a row of a table with n rows.
// Every backend resolves positions through this check.
func ValidIndex(index, n int) bool {
	return index >= 0 && index < n
}

// Number assigns fresh zero-based positions to txs in order.
func Number(txs []core.Transaction) []Entry {
	out := make([]Entry, len(txs))
	for i, tx := range txs {
		out[i] = Entry{Index: i, Transaction: tx}
	}
	return out
}

// Transactions strips positions from entries.
func Transactions(entries []Entry) []core.Transaction {
	out := make([]core.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.Transaction
	}
	return out
}

// RemoveAt returns txs without the element at index. The caller checks the
// index with ValidIndex first.
func RemoveAt(txs []core.Transaction, index int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs)-1)
	out = append(out, txs[:index]...)
	return append(out, txs[index+1:]...)
}

// FilterRange keeps the entries dated within [start, end] inclusive,
// preserving their order and positions.
func FilterRange(entries []Entry, start, end core.Date) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ParseRange parses both range bounds with f.
func ParseRange(f core.DateFormat, start, end string) (core.Date, core.Date, error) {
	s, err := f.Parse(start)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	e, err := f.Parse(end)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return s, e, nil
}

// Select parses the range bounds and filters a loaded table the way
// Store.Query reports it.
func Select(f core.DateFormat, entries []Entry, start, end string) ([]Entry, bool, error) {
	s, e, err := ParseRange(f, start, end)
	if err != nil {
		return nil, false, err
	}
	out := FilterRange(entries, s, e)
	return out, len(out) > 0, nil
}

// MatchDescription keeps the entries whose description fuzzily contains term,
// ignoring case and diacritics. An empty term matches everything.
func MatchDescription(entries []Entry, term string) []Entry {
	term = strings.TrimSpace(term)
	if term == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if fuzzy.MatchNormalizedFold(term, e.Description) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize computes income, expense and net saving over entries.
func Summarize(entries []Entry) core.Summary {
	var s core.Summary
	for _, e := range entries {
		s.Add(e.Transaction)
	}
	return s
}
