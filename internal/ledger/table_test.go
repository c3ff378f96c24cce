package ledger

import (
	"math"
	"testing"

	"ledger/internal/core"
)

func tx(day int, cat core.Category, amount float64, desc string) core.Transaction {
	return core.Transaction{Date: core.NewDate(2024, 1, day), Amount: amount, Category: cat, Description: desc}
}

func TestValidIndex(t *testing.T) {
	cases := []struct {
		index, n int
		want     bool
	}{
		{0, 1, true},
		{2, 3, true},
		{3, 3, false},
		{-1, 3, false},
		{0, 0, false},
	}
	for _, tc := range cases {
		if got := ValidIndex(tc.index, tc.n); got != tc.want {
			t.Fatalf("ValidIndex(%d, %d) = %v, want %v", tc.index, tc.n, got, tc.want)
		}
	}
}

func TestRemoveAtRenumbers(t *testing.T) {
	txs := []core.Transaction{tx(1, core.Income, 1, "a"), tx(2, core.Income, 2, "b"), tx(3, core.Income, 3, "c")}
	entries := Number(RemoveAt(txs, 1))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Index != 1 || entries[1].Description != "c" {
		t.Fatalf("former position 2 should now be at 1, got %+v", entries[1])
	}
	if len(txs) != 3 || txs[1].Description != "b" {
		t.Fatalf("input slice must not be modified: %+v", txs)
	}
}

func TestFilterRangeInclusive(t *testing.T) {
	entries := Number([]core.Transaction{
		tx(9, core.Income, 1, "before"),
		tx(10, core.Income, 1, "start"),
		tx(15, core.Expense, 1, "middle"),
		tx(20, core.Expense, 1, "end"),
		tx(21, core.Expense, 1, "after"),
	})
	got := FilterRange(entries, core.NewDate(2024, 1, 10), core.NewDate(2024, 1, 20))
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []string{"start", "middle", "end"}
	for i, e := range got {
		if e.Description != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], e.Description)
		}
		if e.Index != i+1 {
			t.Fatalf("expected position %d, got %d", i+1, e.Index)
		}
	}
}

func TestSelect(t *testing.T) {
	entries := Number([]core.Transaction{tx(5, core.Income, 1, "x")})
	f := core.CanonicalDateFormat()

	got, found, err := Select(f, entries, "01-01-2024", "31-01-2024")
	if err != nil || !found || len(got) != 1 {
		t.Fatalf("unexpected select: got=%v found=%v err=%v", got, found, err)
	}

	got, found, err = Select(f, entries, "06-01-2024", "31-01-2024")
	if err != nil || found || len(got) != 0 {
		t.Fatalf("expected empty select: got=%v found=%v err=%v", got, found, err)
	}

	if _, _, err := Select(f, entries, "2024-01-01", "31-01-2024"); err == nil {
		t.Fatalf("expected error for malformed bound")
	}
}

func TestSummarize(t *testing.T) {
	entries := Number([]core.Transaction{
		tx(1, core.Income, 100, ""),
		tx(2, core.Expense, 40, ""),
		tx(3, core.Income, 25, ""),
		tx(4, core.Expense, 5, ""),
	})
	s := Summarize(entries)
	if s.TotalIncome != 125 || s.TotalExpense != 45 || s.NetSaving != 80 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSummarizeEmptyAndUnknownCategories(t *testing.T) {
	if s := Summarize(nil); s != (core.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	s := Summarize(Number([]core.Transaction{tx(1, "Gift", 50, ""), tx(2, "income", 10, "")}))
	if s != (core.Summary{}) {
		t.Fatalf("unknown categories must not contribute, got %+v", s)
	}
}

func TestSummarizeKeepsPrecision(t *testing.T) {
	entries := Number([]core.Transaction{tx(1, core.Income, 0.005, ""), tx(2, core.Income, 0.005, "")})
	s := Summarize(entries)
	if math.Abs(s.TotalIncome-0.01) > 1e-12 {
		t.Fatalf("expected 0.01, got %v", s.TotalIncome)
	}
}

func TestMatchDescription(t *testing.T) {
	entries := Number([]core.Transaction{
		tx(1, core.Expense, 1, "Groceries at Café Central"),
		tx(2, core.Expense, 1, "Rent"),
		tx(3, core.Income, 1, "Salary"),
	})
	if got := MatchDescription(entries, ""); len(got) != 3 {
		t.Fatalf("empty term should match all, got %d", len(got))
	}
	got := MatchDescription(entries, "cafe")
	if len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("expected the grocery entry, got %+v", got)
	}
	if got := MatchDescription(entries, "slry"); len(got) != 1 || got[0].Index != 2 {
		t.Fatalf("expected fuzzy match on salary, got %+v", got)
	}
}
