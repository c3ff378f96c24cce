// Package report renders query results for people and prepares the daily
// series handed to chart renderers. Nothing here touches storage.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// DefaultSymbol prefixes rendered money values.
const DefaultSymbol = "$"

// WriteEntries prints entries as an aligned table. The index column is the
// position accepted by update and delete.
func WriteEntries(w io.Writer, entries []ledger.Entry, format core.DateFormat) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "index\tdate\tamount\tcategory\tdescription")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.Index,
			format.Format(e.Date),
			core.FormatAmount(e.Amount),
			e.Category,
			singleLine(e.Description))
	}
	return tw.Flush()
}

// WriteSummary prints the three totals in currency form.
func WriteSummary(w io.Writer, s core.Summary, symbol string) error {
	_, err := fmt.Fprintf(w, "Summary:\nTotal Income: %s\nTotal Expense: %s\nNet Saving: %s\n",
		Currency(s.TotalIncome, symbol),
		Currency(s.TotalExpense, symbol),
		Currency(s.NetSaving, symbol))
	return err
}

// Currency renders v rounded to two decimals with thousands separators,
// e.g. Currency(1234.5, "$") == "$1,234.50".
func Currency(v float64, symbol string) string {
	return symbol + humanize.FormatFloat("#,###.##", roundCents(v))
}

func roundCents(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drops negative zero
	}
	return r
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fixed2(v float64) string {
	return strconv.FormatFloat(roundCents(v), 'f', 2, 64)
}
