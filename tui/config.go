package tui

import (
	"fmt"
	"strings"

	dnspkg "dnsprop/dns"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultConfigPath is where the config view saves when no config file was given.
const DefaultConfigPath = "dnsprop.yaml"

// ConfigSavedMsg reports the outcome of saving the config file.
type ConfigSavedMsg struct {
	Path string
	Err  error
}

// ConfigModel lets the user pick which vantage points take part in checks
// and persist that choice.
type ConfigModel struct {
	cfg     *dnspkg.Config
	path    string
	points  []dnspkg.VantagePoint
	enabled []bool
	cursor  int
	status  string
	width   int
	height  int
}

func NewConfigModel(cfg *dnspkg.Config, path string) ConfigModel {
	points := append([]dnspkg.VantagePoint(nil), cfg.VantagePoints...)
	enabled := make([]bool, len(points))
	for i := range enabled {
		enabled[i] = true
	}
	if path == "" {
		path = DefaultConfigPath
	}
	return ConfigModel{
		cfg:     cfg,
		path:    path,
		points:  points,
		enabled: enabled,
	}
}

// Selected returns the enabled vantage points in configured order.
func (m ConfigModel) Selected() []dnspkg.VantagePoint {
	var out []dnspkg.VantagePoint
	for i, p := range m.points {
		if m.enabled[i] {
			out = append(out, p)
		}
	}
	return out
}

func (m *ConfigModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m ConfigModel) Update(msg tea.Msg) (ConfigModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ConfigSavedMsg:
		if msg.Err != nil {
			m.status = StatusRed.Render("Save failed: " + msg.Err.Error())
		} else {
			m.status = StatusGreen.Render("Saved to " + msg.Path)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "down", "j", "tab":
			if len(m.points) > 0 {
				m.cursor = (m.cursor + 1) % len(m.points)
			}
		case "up", "k", "shift+tab":
			if len(m.points) > 0 {
				m.cursor = (m.cursor - 1 + len(m.points)) % len(m.points)
			}
		case "enter", " ":
			if len(m.points) > 0 {
				m.enabled[m.cursor] = !m.enabled[m.cursor]
				m.status = ""
			}
		case "a":
			all := len(m.Selected()) != len(m.points)
			for i := range m.enabled {
				m.enabled[i] = all
			}
			m.status = ""
		case "s":
			if len(m.Selected()) == 0 {
				m.status = StatusRed.Render("Enable at least one vantage point before saving")
				return m, nil
			}
			return m, m.save()
		}
	}
	return m, nil
}

func (m ConfigModel) save() tea.Cmd {
	cfg := *m.cfg
	cfg.VantagePoints = m.Selected()
	path := m.path
	return func() tea.Msg {
		return ConfigSavedMsg{Path: path, Err: dnspkg.SaveConfig(&cfg, path)}
	}
}

func (m ConfigModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Vantage Points"))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d/%d enabled", len(m.Selected()), len(m.points))))
	b.WriteString("\n\n")

	cursorStyle := lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	var region dnspkg.Region
	for i, p := range m.points {
		if p.Region != region {
			region = p.Region
			b.WriteString(RegionStyle.Render(string(region)))
			b.WriteString("\n")
		}
		check := MutedStyle.Render("[ ]")
		if m.enabled[i] {
			check = StatusGreen.Render("[x]")
		}
		line := fmt.Sprintf("%s %s %-16s %s", check, p.Flag, p.Name, MutedStyle.Render(p.Resolver))
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("Saving writes the enabled points to " + m.path))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}

	return BorderStyle.Width(max(m.width-4, 40)).Render(b.String())
}
