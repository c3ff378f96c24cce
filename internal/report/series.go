package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Series is a dense per-day view of income and expense. Income[i] and
// Expense[i] are the totals for Dates[i].
type Series struct {
	Dates   []core.Date
	Income  []float64
	Expense []float64
}

// ToDailySeries sums same-day amounts per category over the distinct dates
// present in entries, ascending. A date with no entry of a category gets 0
// for that category.
func ToDailySeries(entries []ledger.Entry) Series {
	type totals struct{ income, expense float64 }
	byDay := map[core.Date]*totals{}
	for _, e := range entries {
		t, ok := byDay[e.Date]
		if !ok {
			t = &totals{}
			byDay[e.Date] = t
		}
		switch e.Category {
		case core.Income:
			t.income += e.Amount
		case core.Expense:
			t.expense += e.Amount
		}
	}

	s := Series{Dates: make([]core.Date, 0, len(byDay))}
	for d := range byDay {
		s.Dates = append(s.Dates, d)
	}
	sort.Slice(s.Dates, func(i, j int) bool { return s.Dates[i].Before(s.Dates[j]) })
	s.Income = make([]float64, len(s.Dates))
	s.Expense = make([]float64, len(s.Dates))
	for i, d := range s.Dates {
		s.Income[i] = byDay[d].income
		s.Expense[i] = byDay[d].expense
	}
	return s
}

// WriteSeries prints the series one day per line for a chart consumer.
func WriteSeries(w io.Writer, s Series, format core.DateFormat) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tincome\texpense\t")
	for i, d := range s.Dates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", format.Format(d), fixed2(s.Income[i]), fixed2(s.Expense[i]))
	}
	return tw.Flush()
}
