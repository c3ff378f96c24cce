package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
	if err := (Date{}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("zero date: expected ErrInvalidDate, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Income", Income, true},
		{"Expense", Expense, true},
		{"I", Income, true},
		{"e", Expense, true},
		{" Income ", Income, true},
		{"income", "", false},
		{"Savings", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("%q expected ErrInvalidCategory, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Amount:      0,
		Category:    Expense,
		Description: "",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Amount: 1, Category: Income},
		{Date: NewDate(2025, 1, 1), Amount: -1, Category: Income},
		{Date: NewDate(2025, 1, 1), Amount: 1, Category: "income"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	for _, tx := range []Transaction{
		{Category: Income, Amount: 100},
		{Category: Expense, Amount: 40},
		{Category: "Transfer", Amount: 1000},
	} {
		s.Add(tx)
	}
	if s.TotalIncome != 100 || s.TotalExpense != 40 || s.NetSaving != 60 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
