package backend

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/ledger/csvfile"
	"ledger/internal/ledger/memory"
	"ledger/internal/log"
	"ledger/internal/services"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case CSVBackend:
		result = f.createCSVBackend(config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(result, config)
	return result, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) *BackendResult {
	store := csvfile.New(config.LedgerFile, config.DateFormat)
	f.logger.Debug("Initialized CSV backend", log.FieldPath, config.LedgerFile)
	return &BackendResult{Store: store}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Debug("Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	store := memory.New(config.DateFormat)
	if config.SeedFile != "" {
		store = memory.NewFromFile(config.SeedFile, config.DateFormat)
	}
	f.logger.Debug("Initialized memory backend", "seed_file", config.SeedFile)
	return &BackendResult{Store: store}
}

// attachPublisher connects the optional AMQP client. A broker that cannot
// be reached leaves the backend usable without change events.
func (f *DefaultFactory) attachPublisher(result *BackendResult, config Config) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		log.FieldExchange, config.AMQPExchange,
		log.FieldQueue, config.AMQPQueue)

	result.Publisher = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp client: %w", err))
		}
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// CreateSinks implements Factory.CreateSinks
func (f *DefaultFactory) CreateSinks(ctx context.Context, config Config) (*SinkResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	result := &SinkResult{}
	var closers []CleanupFunc

	if config.MirrorSQLite {
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite mirror: %w", err)
		}
		result.Sinks = append(result.Sinks, services.NamedSink{Name: "sqlite", Sink: repo})
		closers = append(closers, repo.Close)
		f.logger.Info("Initialized SQLite mirror", log.FieldPath, config.SQLiteDBPath)
	}

	if config.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.NewExporter(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			SheetName:          config.GoogleSheetName,
			ServiceAccountFile: config.GoogleServiceAccountFile,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			DateFormat:         config.DateFormat,
		})
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
		result.Sinks = append(result.Sinks, services.NamedSink{Name: "sheets", Sink: exporter})
		f.logger.Info("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
	}

	result.Cleanup = func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}
