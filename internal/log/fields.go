package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOutcome     = "outcome"
	FieldIndex       = "index"
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldRows        = "rows"
	FieldRangeStart  = "range_start"
	FieldRangeEnd    = "range_end"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldSink        = "sink"
	FieldDurationMS  = "duration_ms"
	FieldExchange    = "exchange"
	FieldQueue       = "queue"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentMirror  = "mirror"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpInit     = "init"
	OpAppend   = "append"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpQuery    = "query"
	OpMirror   = "mirror"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithIndex adds the row position
func (f LogFields) WithIndex(index int) LogFields {
	f[FieldIndex] = index
	return f
}

// WithTransaction adds transaction fields. The description is left out.
func (f LogFields) WithTransaction(date string, amount float64, category string) LogFields {
	f[FieldDate] = date
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// WithOutcome adds the store outcome
func (f LogFields) WithOutcome(outcome string) LogFields {
	f[FieldOutcome] = outcome
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
