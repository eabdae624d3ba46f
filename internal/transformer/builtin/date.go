package builtin

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"prgenfuel/internal/table"
)

// monthYearLayout parses "January2021".
const monthYearLayout = "January2006"

// DeriveDate builds DateColumn as the first day of Month/Year (UTC) and drops
// the year and month columns. Rows missing either part get a missing date;
// a present but unparseable pair fails the step.
type DeriveDate struct {
	YearColumn  string
	MonthColumn string
	DateColumn  string
}

func (d DeriveDate) Apply(t *table.Table) (*table.Table, error) {
	years, err := t.Lookup(d.YearColumn)
	if err != nil {
		return nil, err
	}
	months, err := t.Lookup(d.MonthColumn)
	if err != nil {
		return nil, err
	}
	if t.Has(d.DateColumn) {
		return nil, fmt.Errorf("derive date: column %q already exists", d.DateColumn)
	}

	title := cases.Title(language.English)
	dates := table.NewColumn(d.DateColumn, table.KindDate, t.NumRows())
	for i := range dates.Values {
		m, okM := table.AsString(months.Values[i])
		y, okY := table.AsInt64(years.Values[i])
		if !okM || !okY {
			if months.Values[i] != nil && years.Values[i] != nil {
				return nil, fmt.Errorf("derive date row %d: year %v is not an integer", i, years.Values[i])
			}
			continue
		}
		ts, err := ParseMonthYear(title.String(m), y)
		if err != nil {
			return nil, fmt.Errorf("derive date row %d: %w", i, err)
		}
		dates.Values[i] = ts
	}
	return t.Drop(d.YearColumn, d.MonthColumn).Append(dates)
}

// ParseMonthYear returns the first day of the month named by month (title
// case English, e.g. "March") in year, in UTC.
func ParseMonthYear(month string, year int64) (time.Time, error) {
	ts, err := time.Parse(monthYearLayout, fmt.Sprintf("%s%04d", month, year))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q/%d: %w", month, year, err)
	}
	return ts, nil
}
