package main

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorGold   = lipgloss.Color("#E0B04B")
	colorIndigo = lipgloss.Color("#2E2A5A")
	colorMuted  = lipgloss.Color("#8A8FA3")
	colorError  = lipgloss.Color("#E53935")
	colorOK     = lipgloss.Color("#8BC34A")
)

// styles holds the chat UI styles.
type styles struct {
	Header  lipgloss.Style
	Badge   lipgloss.Style
	Muted   lipgloss.Style
	Content lipgloss.Style
	Input   lipgloss.Style
	Prompt  lipgloss.Style
	Spinner lipgloss.Style
	Error   lipgloss.Style
	Ready   lipgloss.Style
	Busy    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colorGold).Background(colorIndigo).Padding(0, 1),
		Badge:   lipgloss.NewStyle().Foreground(colorIndigo).Background(colorGold).Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Content: lipgloss.NewStyle().Padding(0, 1),
		Input:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGold).Padding(0, 1),
		Prompt:  lipgloss.NewStyle().Foreground(colorGold),
		Spinner: lipgloss.NewStyle().Foreground(colorGold),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Ready:   lipgloss.NewStyle().Foreground(colorOK),
		Busy:    lipgloss.NewStyle().Foreground(colorGold),
	}
}
