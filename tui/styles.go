package tui

import (
	dnspkg "dnsprop/dns"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen      = lipgloss.Color("#28a745")
	colorYellow     = lipgloss.Color("#ffc107")
	colorOrange     = lipgloss.Color("#fd7e14")
	colorRed        = lipgloss.Color("#dc3545")
	colorMuted      = lipgloss.Color("#6c757d")
	colorBorder     = lipgloss.Color("#444")
	colorHeader     = lipgloss.Color("#059669")
	colorHeaderDark = lipgloss.Color("#047857")
)

var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(colorHeader).
			Bold(true)

	RegionStyle = lipgloss.NewStyle().
			Foreground(colorHeader).
			Underline(true)

	StatusGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StatusYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StatusRed    = lipgloss.NewStyle().Foreground(colorRed)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// labelStyle colours a propagation label by how far the record has spread.
func labelStyle(percent int) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case percent >= 100:
		return style.Foreground(colorGreen)
	case percent >= 50:
		return style.Foreground(colorYellow)
	case percent >= 25:
		return style.Foreground(colorOrange)
	default:
		return style.Foreground(colorRed)
	}
}

func statusStyle(s dnspkg.ProbeStatus) lipgloss.Style {
	switch s {
	case dnspkg.StatusPropagated:
		return StatusGreen
	case dnspkg.StatusNotPropagated:
		return StatusYellow
	default:
		return StatusRed
	}
}
