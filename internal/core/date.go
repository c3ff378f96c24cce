package core

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalLayout is the DD-MM-YYYY form used on disk and for range bounds.
const CanonicalLayout = "02-01-2006"

// DateFormat is the textual date form shared by storage, range queries and
// presentation. It is passed around explicitly instead of living in a global.
type DateFormat struct {
	Layout string
}

// CanonicalDateFormat returns the DD-MM-YYYY format.
func CanonicalDateFormat() DateFormat {
	return DateFormat{Layout: CanonicalLayout}
}

// Parse reads s as a calendar date. Any time-of-day in the layout is dropped.
func (f DateFormat) Parse(s string) (Date, error) {
	t, err := time.Parse(f.layout(), strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q (want %s): %v", ErrInvalidDate, s, f.layout(), err)
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// Format renders d in the format's layout.
func (f DateFormat) Format(d Date) string {
	return d.Time.Format(f.layout())
}

// Validate checks that the layout round-trips a known date.
func (f DateFormat) Validate() error {
	probe := NewDate(2024, 12, 31)
	got, err := f.Parse(f.Format(probe))
	if err != nil {
		return err
	}
	if !got.Equal(probe) {
		return fmt.Errorf("date layout %q does not round-trip", f.layout())
	}
	return nil
}

func (f DateFormat) layout() string {
	if f.Layout == "" {
		return CanonicalLayout
	}
	return f.Layout
}
