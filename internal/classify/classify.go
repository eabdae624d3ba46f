// Package classify splits raw column names into monthly (one of twelve
// per-month variants of a metric) and annual columns.
package classify

import (
	"strings"
	"time"
)

// Months are the lowercase English month names in calendar order.
var Months = func() []string {
	out := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		out[m-1] = strings.ToLower(m.String())
	}
	return out
}()

// Split partitions names into monthly and annual columns, preserving order.
// A column is monthly when its name ends with an English month name, compared
// case-insensitively. Every name lands in exactly one of the two results.
func Split(names []string) (monthly, annual []string) {
	for _, n := range names {
		if IsMonthly(n) {
			monthly = append(monthly, n)
		} else {
			annual = append(annual, n)
		}
	}
	return monthly, annual
}

// IsMonthly reports whether name ends with a month name.
func IsMonthly(name string) bool {
	_, ok := MonthSuffix(name)
	return ok
}

// MonthSuffix returns the lowercase month name that name ends with.
func MonthSuffix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, m := range Months {
		if strings.HasSuffix(lower, m) {
			return m, true
		}
	}
	return "", false
}

// FamilyColumns returns the twelve "<family>_<month>" column names in
// calendar order.
func FamilyColumns(family string) []string {
	out := make([]string, len(Months))
	for i, m := range Months {
		out[i] = family + "_" + m
	}
	return out
}
