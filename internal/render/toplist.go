// Package render draws ranked tallies and period tables as terminal charts
// and writes them to files.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/narrator/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	rowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
)

// palette colors successive series.
var palette = []lipgloss.Color{"39", "208", "196", "42", "201", "226", "45", "141", "244", "160"}

func seriesStyle(i int) lipgloss.Style {
	c := palette[i%len(palette)]
	return lipgloss.NewStyle().Foreground(c).Background(c)
}

func pairLabel(k model.Key) string {
	if k.Date == "" {
		return k.Term
	}
	return k.Term + " " + k.Date
}

// TopList renders the first n pairs as a ranked list with proportional
// bars. n <= 0 renders every pair.
func TopList(title string, pairs []model.CountPair, width, n int) string {
	var lines []string
	if title != "" {
		lines = append(lines, titleStyle.Render(title))
	}
	if len(pairs) == 0 {
		lines = append(lines, emptyStyle.Render("No data available"))
		return strings.Join(lines, "\n")
	}

	maxItems := len(pairs)
	if n > 0 && n < maxItems {
		maxItems = n
	}

	maxCount := int64(0)
	for _, p := range pairs[:maxItems] {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}

	countFieldWidth := len(fmt.Sprintf("%d", maxCount))
	if countFieldWidth < 3 {
		countFieldWidth = 3
	}

	barWidth := 15
	if width < 40 {
		barWidth = 8
	}
	fixedOverhead := 4 + (countFieldWidth + 2) + 2
	labelWidth := width - fixedOverhead - barWidth
	if labelWidth < 8 {
		labelWidth = 8
	}

	formatStr := fmt.Sprintf("%%2d. %%-%ds %%%dd |%%s|", labelWidth, countFieldWidth)
	for i, p := range pairs[:maxItems] {
		filled := 0
		if maxCount > 0 {
			filled = int((float64(p.Count) / float64(maxCount)) * float64(barWidth))
		}
		if filled == 0 && p.Count > 0 {
			filled = 1
		}
		filled = max(0, min(filled, barWidth))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		label := truncate(pairLabel(p.Key), labelWidth)
		lines = append(lines, rowStyle.Render(fmt.Sprintf(formatStr, i+1, label, p.Count, bar)))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
