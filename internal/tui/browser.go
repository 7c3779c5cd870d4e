// Package tui is an interactive browser over summarized aggregations. Each
// aggregation is a section; sections with a period table can be stepped
// through one period at a time.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/render"
	"github.com/tinytelemetry/narrator/internal/tally"
)

const (
	browserPageID = "browser"
	helpPageID    = "help"
)

// Section is one aggregation shown by the browser. Table is empty for
// corpus-wide aggregations, which show Pairs only.
type Section struct {
	Name  string
	Pairs []model.CountPair
	Table model.WideTable
}

// Data is everything the browser shows.
type Data struct {
	Title       string
	PeriodDates map[string][]string
	Sections    []Section
}

// BrowserPage shows one section at a time.
type BrowserPage struct {
	data      Data
	keys      KeyMap
	help      help.Model
	section   int
	period    int
	offset    int
	showChart bool
	height    int
}

// NewBrowserPage creates the main page.
func NewBrowserPage(data Data) *BrowserPage {
	return &BrowserPage{data: data, keys: DefaultKeyMap(), help: help.New()}
}

func (p *BrowserPage) ID() string    { return browserPageID }
func (p *BrowserPage) Init() tea.Cmd { return nil }

// Period returns the name of the shown period, if the section has periods.
func (p *BrowserPage) Period() (string, bool) {
	rows := p.current().Table.Rows
	if len(rows) == 0 {
		return "", false
	}
	return rows[p.period].Period, true
}

func (p *BrowserPage) current() Section {
	if len(p.data.Sections) == 0 {
		return Section{}
	}
	return p.data.Sections[p.section]
}

func (p *BrowserPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
		p.height = msg.Height
	case tea.KeyMsg:
		k := p.keys
		switch {
		case key.Matches(msg, k.Quit):
			return tea.Quit, nil
		case key.Matches(msg, k.Help):
			return nil, &PageNav{PageID: helpPageID}
		case key.Matches(msg, k.NextSection):
			p.selectSection(p.section + 1)
		case key.Matches(msg, k.PrevSection):
			p.selectSection(p.section - 1)
		case key.Matches(msg, k.NextPeriod):
			p.selectPeriod(p.period + 1)
		case key.Matches(msg, k.PrevPeriod):
			p.selectPeriod(p.period - 1)
		case key.Matches(msg, k.Down):
			if p.offset < len(p.visiblePairs())-1 {
				p.offset++
			}
		case key.Matches(msg, k.Up):
			if p.offset > 0 {
				p.offset--
			}
		case key.Matches(msg, k.ToggleChart):
			p.showChart = !p.showChart
		}
	}
	return nil, nil
}

// selectSection wraps around; period and scroll reset.
func (p *BrowserPage) selectSection(i int) {
	n := len(p.data.Sections)
	if n == 0 {
		return
	}
	p.section = (i%n + n) % n
	p.period = 0
	p.offset = 0
}

// selectPeriod clamps to the section's periods.
func (p *BrowserPage) selectPeriod(i int) {
	n := len(p.current().Table.Rows)
	if n == 0 {
		return
	}
	p.period = max(0, min(i, n-1))
	p.offset = 0
}

// visiblePairs are the ranked terms of the shown period, or the section's
// pairs when it has no periods.
func (p *BrowserPage) visiblePairs() []model.CountPair {
	s := p.current()
	if len(s.Table.Rows) == 0 {
		return s.Pairs
	}
	row := s.Table.Rows[p.period]
	pairs := make([]model.CountPair, 0, len(s.Table.Terms))
	for j, term := range s.Table.Terms {
		if j < len(row.Counts) {
			pairs = append(pairs, model.CountPair{Key: model.Key{Term: term}, Count: row.Counts[j]})
		}
	}
	return tally.Sample(pairs, model.SortByCountDesc, 0)
}

func (p *BrowserPage) View(width, height int) string {
	if len(p.data.Sections) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, subtleStyle.Render("No aggregations to show"))
	}

	title := p.data.Title
	if title == "" {
		title = "narrator"
	}
	header := headerStyle.Width(width).Render(title)

	tabs := make([]string, len(p.data.Sections))
	for i, s := range p.data.Sections {
		if i == p.section {
			tabs[i] = activeTabStyle.Render(s.Name)
		} else {
			tabs[i] = tabStyle.Render(s.Name)
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	innerWidth := max(width-4, 20)
	body := p.renderBody(innerWidth, max(height-8, 4))
	footer := p.help.View(p.keys)

	return lipgloss.JoinVertical(lipgloss.Left, header, tabBar, sectionStyle.Width(width-2).Render(body), footer)
}

func (p *BrowserPage) renderBody(width, height int) string {
	s := p.current()
	var lines []string

	if name, ok := p.Period(); ok {
		label := fmt.Sprintf("Period %s (%d/%d)", name, p.period+1, len(s.Table.Rows))
		if days := p.data.PeriodDates[name]; len(days) > 0 {
			label += fmt.Sprintf("  %s → %s", days[0], days[len(days)-1])
		}
		lines = append(lines, label)
	}

	if p.showChart && len(s.Table.Rows) > 0 {
		lines = append(lines, render.PeriodBars("", s.Table, width, max(height-2, 3)))
		return strings.Join(lines, "\n")
	}

	pairs := p.visiblePairs()
	if p.offset < len(pairs) {
		pairs = pairs[p.offset:]
	}
	limit := max(height-len(lines), 1)
	lines = append(lines, render.TopList("", pairs, width, limit))
	return strings.Join(lines, "\n")
}
