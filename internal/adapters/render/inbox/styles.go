package inbox

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	peer       lipgloss.Style
	selected   lipgloss.Style
	local      lipgloss.Style
	preview    lipgloss.Style
	timestamp  lipgloss.Style
	unread     lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	countKey   lipgloss.Style
	self       lipgloss.Style
	other      lipgloss.Style
	failed     lipgloss.Style
	warning    lipgloss.Style
	statusLine lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		peer:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("39")),
		local:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		preview:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		timestamp:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		unread:     lipgloss.NewStyle().Bold(true),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		countKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		self:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		other:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		failed:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		statusLine: lipgloss.NewStyle().Faint(true),
	}
}
