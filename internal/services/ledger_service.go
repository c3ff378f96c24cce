package services

import (
	"context"
	"fmt"
	"io"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/report"
)

// ChangePublisher announces table mutations to other processes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// Report is the result of a range query, ready for presentation.
type Report struct {
	Entries []ledger.Entry
	Found   bool
	Summary core.Summary
	Series  report.Series
}

// LedgerService runs store operations, logs their outcome and publishes a
// change event after every successful mutation.
type LedgerService struct {
	store     ledger.Store
	publisher ChangePublisher
	logger    *log.Logger
}

// NewLedgerService wires a store with an optional publisher. A nil logger
// discards records.
func NewLedgerService(store ledger.Store, publisher ChangePublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.Config{Output: io.Discard})
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Init ensures the backing table exists.
func (s *LedgerService) Init(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	return nil
}

// Add appends tx to the table.
func (s *LedgerService) Add(ctx context.Context, tx core.Transaction) (ledger.Outcome, error) {
	out, err := s.store.Append(ctx, tx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Append failed", log.FieldError, err)
		return out, fmt.Errorf("append transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction appended",
		log.FieldCategory, tx.Category,
		log.FieldAmount, tx.Amount)
	s.publish(ctx, out, amqp.OpAppend, -1)
	return out, nil
}

// Update overwrites the row at index.
func (s *LedgerService) Update(ctx context.Context, index int, tx core.Transaction) (ledger.Outcome, error) {
	out, err := s.store.Update(ctx, index, tx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Update failed", log.FieldIndex, index, log.FieldError, err)
		return out, fmt.Errorf("update transaction %d: %w", index, err)
	}
	s.logOutcome(ctx, log.OpUpdate, index, out)
	s.publish(ctx, out, amqp.OpUpdate, index)
	return out, nil
}

// Delete removes the row at index; later rows shift down by one.
func (s *LedgerService) Delete(ctx context.Context, index int) (ledger.Outcome, error) {
	out, err := s.store.Delete(ctx, index)
	if err != nil {
		s.logger.ErrorContext(ctx, "Delete failed", log.FieldIndex, index, log.FieldError, err)
		return out, fmt.Errorf("delete transaction %d: %w", index, err)
	}
	s.logOutcome(ctx, log.OpDelete, index, out)
	s.publish(ctx, out, amqp.OpDelete, index)
	return out, nil
}

// Report queries [start, end], keeps the rows whose description fuzzily
// matches match (all rows when empty), and aggregates them.
func (s *LedgerService) Report(ctx context.Context, start, end, match string) (Report, error) {
	entries, _, err := s.store.Query(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("query %s..%s: %w", start, end, err)
	}
	entries = ledger.MatchDescription(entries, match)

	s.logger.DebugContext(ctx, "Range queried",
		log.FieldRangeStart, start,
		log.FieldRangeEnd, end,
		log.FieldRows, len(entries))

	return Report{
		Entries: entries,
		Found:   len(entries) > 0,
		Summary: ledger.Summarize(entries),
		Series:  report.ToDailySeries(entries),
	}, nil
}

// List returns the whole table.
func (s *LedgerService) List(ctx context.Context) ([]ledger.Entry, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return entries, nil
}

func (s *LedgerService) logOutcome(ctx context.Context, op string, index int, out ledger.Outcome) {
	fields := log.NewFields().WithOperation(op).WithIndex(index).WithOutcome(out.String())
	if out == ledger.Success {
		s.logger.InfoContext(ctx, "Ledger mutated", fields.ToSlice()...)
		return
	}
	s.logger.WarnContext(ctx, "Ledger left unchanged", fields.ToSlice()...)
}

// publish is best effort: the table is already written when it runs.
func (s *LedgerService) publish(ctx context.Context, out ledger.Outcome, op string, index int) {
	if out != ledger.Success {
		return
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No change publisher configured, skipping event")
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeMessage(op, index)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldOperation, op,
			log.FieldError, err)
	}
}
