package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage lists every key binding.
type HelpPage struct {
	keys KeyMap
	help help.Model
}

// NewHelpPage creates the help page.
func NewHelpPage() *HelpPage {
	h := help.New()
	h.ShowAll = true
	return &HelpPage{keys: DefaultKeyMap(), help: h}
}

func (p *HelpPage) ID() string    { return helpPageID }
func (p *HelpPage) Init() tea.Cmd { return nil }

func (p *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Escape), key.Matches(msg, p.keys.Help):
			return nil, &PageNav{PageID: browserPageID}
		}
	}
	return nil, nil
}

func (p *HelpPage) View(width, height int) string {
	block := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Keys"),
		"",
		p.help.View(p.keys),
		"",
		subtleStyle.Render("esc to go back"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
