// Package ledger defines the transaction table contract shared by every
// storage backend, plus the pure helpers that operate on loaded rows.
package ledger

import (
	"context"

	"ledger/internal/core"
)

// Columns is the canonical header of the backing table.
var Columns = []string{"date", "amount", "category", "description"}

// Outcome reports how a store operation ended. None of these are failures;
// genuine I/O faults travel on the error return instead.
type Outcome int

const (
	Success Outcome = iota
	InvalidIndex
	NoData
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case InvalidIndex:
		return "invalid_index"
	case NoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// Entry is a transaction together with its current zero-based position.
// The position is the row's identity for Update and Delete and shifts when
// an earlier row is deleted.
type Entry struct {
	Index int
	core.Transaction
}

// Store owns the transaction table.
type Store interface {
	// Initialize creates an empty table with the canonical header when none
	// exists. An existing table is left untouched.
	Initialize(ctx context.Context) error

	// Append adds tx at the end of the table.
	Append(ctx context.Context, tx core.Transaction) (Outcome, error)

	// Update overwrites the row at index. Out of range yields InvalidIndex
	// and no mutation.
	Update(ctx context.Context, index int, tx core.Transaction) (Outcome, error)

	// Delete removes the row at index and renumbers the rows after it.
	// An empty or missing table yields NoData.
	Delete(ctx context.Context, index int) (Outcome, error)

	// Query returns the rows dated within [start, end], both inclusive and
	// given in the store's date format, in table order. found is false when
	// nothing matched.
	Query(ctx context.Context, start, end string) (entries []Entry, found bool, err error)

	// Load returns the whole table.
	Load(ctx context.Context) ([]Entry, error)
}

// Sink receives full snapshots of the table.
type Sink interface {
	ReplaceAll(ctx context.Context, txs []core.Transaction) error
}
