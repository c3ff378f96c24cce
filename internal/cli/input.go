package cli

import (
	"flag"
	"fmt"
	"strings"

	"ledger/internal/core"
)

// transactionInput holds the raw transaction flags before validation.
type transactionInput struct {
	date        *string
	amount      *string
	category    *string
	description *string
}

func bindTransactionFlags(fs *flag.FlagSet) *transactionInput {
	return &transactionInput{
		date:        fs.String("date", "", "transaction date, e.g. 05-03-2024 (add defaults to today)"),
		amount:      fs.String("amount", "", "non-negative amount (required)"),
		category:    fs.String("category", "", "Income or Expense, I or E for short (required)"),
		description: fs.String("description", "", "free-text description"),
	}
}

// transaction validates the flags. An empty date takes fallback when it is
// set, and is an error otherwise.
func (in *transactionInput) transaction(format core.DateFormat, fallback core.Date) (core.Transaction, error) {
	var tx core.Transaction

	raw := strings.TrimSpace(*in.date)
	switch {
	case raw != "":
		d, err := format.Parse(raw)
		if err != nil {
			return tx, fmt.Errorf("invalid date %q: enter the date in %s form: %w", raw, format.Format(core.NewDate(2024, 3, 5)), err)
		}
		tx.Date = d
	case !fallback.IsZero():
		tx.Date = fallback
	default:
		return tx, fmt.Errorf("a date is required")
	}

	if strings.TrimSpace(*in.amount) == "" {
		return tx, fmt.Errorf("an amount is required")
	}
	amount, err := core.ParseAmount(*in.amount)
	if err != nil {
		return tx, fmt.Errorf("invalid amount %q: %w", *in.amount, err)
	}
	tx.Amount = amount

	cat, err := core.ParseCategory(*in.category)
	if err != nil {
		return tx, fmt.Errorf("invalid category %q: enter 'I' for Income or 'E' for Expense: %w", *in.category, err)
	}
	tx.Category = cat
	tx.Description = *in.description

	return tx, tx.Validate()
}
