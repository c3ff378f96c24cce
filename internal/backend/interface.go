package backend

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the primary store, the optional change publisher
// and a cleanup function releasing both.
type BackendResult struct {
	Store     ledger.Store
	Publisher services.ChangePublisher
	Cleanup   CleanupFunc
}

// SinkResult holds the mirror sinks built from configuration.
type SinkResult struct {
	Sinks   []services.NamedSink
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the primary store for the configured type.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)

	// CreateSinks creates every configured mirror sink.
	CreateSinks(ctx context.Context, config Config) (*SinkResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	DateFormat core.DateFormat

	// CSV specific
	LedgerFile string

	// SQLite specific, also used by the SQLite mirror sink
	SQLiteDBPath string
	MirrorSQLite bool

	// Memory backend specific
	SeedFile string

	// Change events, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
