package core

// Summary holds the aggregate totals of a set of transactions.
// Values keep full precision; rounding is a presentation concern.
type Summary struct {
	TotalIncome  float64
	TotalExpense float64
	NetSaving    float64
}

// Add folds one transaction into the summary. Categories other than Income
// and Expense are ignored.
func (s *Summary) Add(t Transaction) {
	switch t.Category {
	case Income:
		s.TotalIncome += t.Amount
	case Expense:
		s.TotalExpense += t.Amount
	default:
		return
	}
	s.NetSaving = s.TotalIncome - s.TotalExpense
}
