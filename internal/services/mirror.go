package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/ledger"
	"ledger/internal/log"
)

// NamedSink labels a sink for logs and errors.
type NamedSink struct {
	Name string
	Sink ledger.Sink
}

// Mirror copies the whole source table into every sink concurrently.
type Mirror struct {
	source ledger.Store
	sinks  []NamedSink
	logger *log.Logger

	mu sync.Mutex
}

func NewMirror(source ledger.Store, logger *log.Logger, sinks ...NamedSink) *Mirror {
	if logger == nil {
		logger = log.New(log.Config{Output: io.Discard})
	}
	return &Mirror{
		source: source,
		sinks:  sinks,
		logger: logger.WithComponent(log.ComponentMirror),
	}
}

// Sinks returns the configured sink names.
func (m *Mirror) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name
	}
	return names
}

// Run loads the source once and replaces the content of every sink with it.
// It returns the number of rows mirrored. The first sink failure cancels the
// others.
func (m *Mirror) Run(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sinks) == 0 {
		m.logger.DebugContext(ctx, "No mirror sinks configured")
		return 0, nil
	}

	start := time.Now()
	entries, err := m.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source table: %w", err)
	}
	txs := ledger.Transactions(entries)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		s := s
		g.Go(func() error {
			if err := s.Sink.ReplaceAll(gctx, txs); err != nil {
				m.logger.ErrorContext(gctx, "Mirror sink failed",
					log.FieldSink, s.Name,
					log.FieldError, err)
				return fmt.Errorf("mirror to %s: %w", s.Name, err)
			}
			m.logger.DebugContext(gctx, "Mirror sink updated",
				log.FieldSink, s.Name,
				log.FieldRows, len(txs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	m.logger.InfoContext(ctx, "Ledger mirrored",
		log.FieldRows, len(txs),
		"sinks", len(m.sinks),
		log.FieldDurationMS, time.Since(start).Milliseconds())
	return len(txs), nil
}
