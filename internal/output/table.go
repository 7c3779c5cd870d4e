package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/tinytelemetry/narrator/internal/model"
)

// Table provides table rendering utilities
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
	quiet  bool
}

// NewTable creates a table on w. A quiet table renders nothing.
func NewTable(w io.Writer, headers []string, quiet bool) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{table: table, header: headers, quiet: quiet}
}

// AddRow adds a row to the table
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render outputs the table
func (t *Table) Render() error {
	if t.quiet {
		return nil
	}
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

// PairsTable lists the first n pairs (all when n <= 0) with their rank.
func PairsTable(w io.Writer, pairs []model.CountPair, n int, quiet bool) *Table {
	t := NewTable(w, []string{"rank", "term", "date", "count"}, quiet)
	for i, p := range pairs {
		if n > 0 && i >= n {
			break
		}
		t.AddRow([]string{strconv.Itoa(i + 1), p.Key.Term, p.Key.Date, strconv.FormatInt(p.Count, 10)})
	}
	return t
}

// WideTable lays out a period-by-term table.
func WideTable(w io.Writer, wide model.WideTable, quiet bool) *Table {
	t := NewTable(w, wide.Columns(), quiet)
	for _, r := range wide.Rows {
		row := make([]string, 0, len(r.Counts)+1)
		row = append(row, r.Period)
		for _, c := range r.Counts {
			row = append(row, strconv.FormatInt(c, 10))
		}
		t.AddRow(row)
	}
	return t
}

// PeriodsTable lists period definitions with their first and last day.
func PeriodsTable(w io.Writer, names []string, days map[string][]string, quiet bool) *Table {
	t := NewTable(w, []string{"period", "begin", "end", "days"}, quiet)
	for _, name := range names {
		d := days[name]
		begin, end := "", ""
		if len(d) > 0 {
			begin, end = d[0], d[len(d)-1]
		}
		t.AddRow([]string{name, begin, end, strconv.Itoa(len(d))})
	}
	return t
}
