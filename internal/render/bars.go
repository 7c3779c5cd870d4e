package render

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/narrator/internal/model"
)

const legendWidth = 22

// Bars draws one bar per pair, in order, with a legend naming each bar.
func Bars(title string, pairs []model.CountPair, width, height int) string {
	labels := make([]string, len(pairs))
	series := make([][]barchart.BarValue, len(pairs))
	for i, p := range pairs {
		labels[i] = pairLabel(p.Key)
		series[i] = []barchart.BarValue{{Name: labels[i], Value: barValue(p.Count), Style: seriesStyle(i)}}
	}

	legend := make([]string, len(pairs))
	for i, p := range pairs {
		legend[i] = legendLine(i, labels[i], p.Count)
	}
	return compose(title, series, legend, width, height)
}

// PeriodBars draws a stacked bar per period with one segment per term and
// a legend of per-term totals.
func PeriodBars(title string, t model.WideTable, width, height int) string {
	series := make([][]barchart.BarValue, len(t.Rows))
	totals := make([]int64, len(t.Terms))
	for i, row := range t.Rows {
		for j, c := range row.Counts {
			if j >= len(t.Terms) {
				break
			}
			totals[j] += c
			if c > 0 {
				series[i] = append(series[i], barchart.BarValue{Name: t.Terms[j], Value: barValue(c), Style: seriesStyle(j)})
			}
		}
	}

	legend := make([]string, len(t.Terms))
	for j, term := range t.Terms {
		legend[j] = legendLine(j, term, totals[j])
	}

	out := compose(title, series, legend, width, height)
	if len(t.Rows) == 0 {
		return out
	}
	names := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		names[i] = row.Period
	}
	return out + "\n" + emptyStyle.Render("periods: "+strings.Join(names, ", "))
}

// barValue maps a count to a bar height. Bars never extend below zero.
func barValue(c int64) float64 {
	return float64(max(c, 0))
}

func legendLine(i int, label string, count int64) string {
	c := palette[i%len(palette)]
	text := fmt.Sprintf("%-*s %6d", legendWidth-8, truncate(label, legendWidth-8), count)
	return lipgloss.NewStyle().Foreground(c).Render(text)
}

// compose draws series with ntcharts and lays the legend beside the chart.
func compose(title string, series [][]barchart.BarValue, legend []string, width, height int) string {
	var head []string
	if title != "" {
		head = append(head, titleStyle.Render(title))
	}
	if len(series) == 0 {
		return strings.Join(append(head, emptyStyle.Render("No data available")), "\n")
	}

	if height < 3 {
		height = 3
	}
	chartWidth := width - legendWidth - 2
	if chartWidth < 20 {
		chartWidth = 20
	}

	gap := 1
	barWidth := (chartWidth - gap*(len(series)-1)) / len(series)
	if barWidth < 1 {
		barWidth = 1
	}
	if barWidth > 8 {
		barWidth = 8
	}

	bc := barchart.New(chartWidth, height,
		barchart.WithBarGap(gap),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, values := range series {
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "EMPTY", Value: 0, Style: emptyStyle}}
		}
		bc.Push(barchart.BarData{Label: "", Values: values})
	}
	bc.Draw()

	chartLines := strings.Split(bc.View(), "\n")
	for len(chartLines) < height {
		chartLines = append(chartLines, "")
	}

	lines := head
	for i := 0; i < max(height, len(legend)); i++ {
		chartLine := ""
		if i < len(chartLines) {
			chartLine = chartLines[i]
		}
		if w := lipgloss.Width(chartLine); w < chartWidth {
			chartLine += strings.Repeat(" ", chartWidth-w)
		}
		legendPart := ""
		if i < len(legend) {
			legendPart = legend[i]
		}
		lines = append(lines, strings.TrimRight(chartLine+"  "+legendPart, " "))
	}
	return strings.Join(lines, "\n")
}
