// Package reshape turns a period skeleton into long or wide tables.
package reshape

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/skeleton"
)

// ErrNotPeriod is returned for skeletons that are not period -> term.
var ErrNotPeriod = errors.New("reshape: skeleton is not period granularity")

// LongForm emits one row per (period, term) in period order, then
// vocabulary order.
func LongForm(sk *skeleton.Skeleton) ([]model.LongRow, error) {
	if sk == nil || sk.Granularity() != model.GranularityPeriod {
		return nil, ErrNotPeriod
	}
	periods, keys := sk.Periods(), sk.Keys()
	rows := make([]model.LongRow, 0, len(periods)*len(keys))
	for i, p := range periods {
		num := periodNum(p, i+1)
		for _, k := range keys {
			c, _ := sk.PeriodCount(p, k)
			rows = append(rows, model.LongRow{Period: p, PeriodNum: num, Term: k, Count: c})
		}
	}
	return rows, nil
}

// WideForm emits one row per period with a column per vocabulary term.
func WideForm(sk *skeleton.Skeleton) (model.WideTable, error) {
	if sk == nil || sk.Granularity() != model.GranularityPeriod {
		return model.WideTable{}, ErrNotPeriod
	}
	t := model.WideTable{Terms: sk.Keys()}
	for _, p := range sk.Periods() {
		row := model.WideRow{Period: p, Counts: make([]int64, len(t.Terms))}
		for j, k := range t.Terms {
			row.Counts[j], _ = sk.PeriodCount(p, k)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Pivot converts long rows to a wide table. Periods and terms keep their
// first-seen order; missing cells are 0.
func Pivot(rows []model.LongRow) model.WideTable {
	var t model.WideTable
	termCol := make(map[string]int)
	periodRow := make(map[string]int)
	for _, r := range rows {
		if _, ok := termCol[r.Term]; !ok {
			termCol[r.Term] = len(t.Terms)
			t.Terms = append(t.Terms, r.Term)
		}
		if _, ok := periodRow[r.Period]; !ok {
			periodRow[r.Period] = len(t.Rows)
			t.Rows = append(t.Rows, model.WideRow{Period: r.Period})
		}
	}
	for i := range t.Rows {
		t.Rows[i].Counts = make([]int64, len(t.Terms))
	}
	for _, r := range rows {
		t.Rows[periodRow[r.Period]].Counts[termCol[r.Term]] = r.Count
	}
	return t
}

// periodNum is the integer value of a numeric period name, else pos.
func periodNum(name string, pos int) int {
	if n, err := strconv.Atoi(name); err == nil {
		return n
	}
	return pos
}

// WriteLongCSV writes rows with a period,period_num,term,count header.
func WriteLongCSV(w io.Writer, rows []model.LongRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"period", "period_num", "term", "count"}); err != nil {
		return fmt.Errorf("write long header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Period, strconv.Itoa(r.PeriodNum), r.Term, strconv.FormatInt(r.Count, 10)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write long row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWideCSV writes t with its Columns as header.
func WriteWideCSV(w io.Writer, t model.WideTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write wide header: %w", err)
	}
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Counts)+1)
		rec = append(rec, r.Period)
		for _, c := range r.Counts {
			rec = append(rec, strconv.FormatInt(c, 10))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write wide row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
