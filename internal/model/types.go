package model

import (
	"fmt"
	"strings"
)

// Row is one post of the corpus. Fields holds the raw cell text keyed by column
// name; the core never mutates it.
type Row struct {
	ID     string
	Fields map[string]string
}

// Get returns the cell for field. Absent and empty cells both report false.
func (r Row) Get(field string) (string, bool) {
	if r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[field]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// PeriodDef names an inclusive calendar range. Begin and End are YYYY-MM-DD.
type PeriodDef struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Begin string `yaml:"begin" mapstructure:"begin"`
	End   string `yaml:"end" mapstructure:"end"`
}

// Observation is one occurrence of a term on a given day.
type Observation struct {
	Term    string
	Date    string
	Weight  float64
	RowID   string
	Keyword string // set only by the keyword+column keyed pass
}

// Key identifies a tally bucket. Date is empty for corpus-wide tallies.
type Key struct {
	Term string
	Date string
}

func (k Key) String() string {
	if k.Date == "" {
		return k.Term
	}
	return k.Term + "@" + k.Date
}

// CountPair is the unit exchanged between the counter and the grouper.
type CountPair struct {
	Key   Key
	Count int64
}

// Granularity is the level counts are grouped at.
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityPeriodDay
	GranularityPeriod
)

func (g Granularity) String() string {
	switch g {
	case GranularityDay:
		return "day"
	case GranularityPeriodDay:
		return "period_day"
	case GranularityPeriod:
		return "period"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity accepts "day", "period_day" or "period".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return GranularityDay, nil
	case "period_day", "period-day":
		return GranularityPeriodDay, nil
	case "period":
		return GranularityPeriod, nil
	default:
		return 0, fmt.Errorf("invalid granularity %q: must be day, period_day or period", s)
	}
}

// SortPolicy selects how tallied pairs are ordered before truncation.
type SortPolicy int

const (
	SortNone SortPolicy = iota
	SortByCountDesc
	SortByKeyAsc
	SortByKeyDesc
)

func (p SortPolicy) String() string {
	switch p {
	case SortNone:
		return "none"
	case SortByCountDesc:
		return "count_desc"
	case SortByKeyAsc:
		return "key_asc"
	case SortByKeyDesc:
		return "key_desc"
	default:
		return fmt.Sprintf("sort(%d)", int(p))
	}
}

// ParseSortPolicy accepts "none", "count_desc", "key_asc" or "key_desc".
// The empty string maps to SortNone.
func ParseSortPolicy(s string) (SortPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "count_desc", "count":
		return SortByCountDesc, nil
	case "key_asc", "date_asc":
		return SortByKeyAsc, nil
	case "key_desc", "date_desc":
		return SortByKeyDesc, nil
	default:
		return 0, fmt.Errorf("invalid sort policy %q: must be none, count_desc, key_asc or key_desc", s)
	}
}

// LongRow is one (period, term, count) row of long-form output.
type LongRow struct {
	Period    string
	PeriodNum int
	Term      string
	Count     int64
}

// WideRow holds one period's counts aligned with WideTable.Terms.
type WideRow struct {
	Period string
	Counts []int64
}

// WideTable is the wide-form output: one row per period, one column per term.
type WideTable struct {
	Terms []string
	Rows  []WideRow
}

// Columns returns the header: "period" followed by every term.
func (t WideTable) Columns() []string {
	cols := make([]string, 0, len(t.Terms)+1)
	cols = append(cols, "period")
	return append(cols, t.Terms...)
}

// Value returns the count for period and term.
func (t WideTable) Value(period, term string) (int64, bool) {
	col := -1
	for i, tm := range t.Terms {
		if tm == term {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.Period == period && col < len(r.Counts) {
			return r.Counts[col], true
		}
	}
	return 0, false
}
