package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Category = "Income"
	Expense Category = "Expense"
)

type (
	Category string

	Date struct {
		time.Time
	}

	Transaction struct {
		Date        Date
		Amount      float64
		Category    Category
		Description string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// Validate rejects the zero date, which stands for "no date given".
func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// Before and After compare calendar days only.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// ParseCategory accepts the exact category names and the single-letter
// shortcuts I and E.
func ParseCategory(s string) (Category, error) {
	switch strings.TrimSpace(s) {
	case "Income", "I", "i":
		return Income, nil
	case "Expense", "E", "e":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Known reports whether c is one of the summed categories.
func (c Category) Known() bool {
	return c == Income || c == Expense
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Category.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return nil
}
