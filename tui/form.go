package tui

import (
	"strings"

	dnspkg "dnsprop/dns"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FormSubmitMsg is sent when the form is submitted with valid data.
type FormSubmitMsg struct {
	Domain string
	Type   dnspkg.RecordType
}

type formField int

const (
	fieldDomain formField = iota
	fieldRecordType
	fieldSubmit
	fieldCount
)

// FormModel holds the state for the input form view.
type FormModel struct {
	domain    textinput.Model
	recordIdx int // index into dnspkg.RecordTypes
	focused   formField
	err       string
	width     int
	height    int
}

// NewFormModel creates a form preselecting defaultType.
func NewFormModel(defaultType string) FormModel {
	domain := textinput.New()
	domain.Placeholder = "example.com"
	domain.CharLimit = 253
	domain.Width = 40
	domain.Focus()

	idx := 0
	if rt, err := dnspkg.ParseRecordType(defaultType); err == nil {
		for i, t := range dnspkg.RecordTypes {
			if t == rt {
				idx = i
			}
		}
	}

	return FormModel{
		domain:    domain,
		recordIdx: idx,
		focused:   fieldDomain,
	}
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keypresses for the form view.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.err = ""

		switch msg.String() {
		case "tab", "down":
			m.focused = (m.focused + 1) % fieldCount
			m.updateFocus()
			return m, nil

		case "shift+tab", "up":
			m.focused = (m.focused - 1 + fieldCount) % fieldCount
			m.updateFocus()
			return m, nil

		case "left":
			if m.focused == fieldRecordType {
				m.recordIdx = (m.recordIdx - 1 + len(dnspkg.RecordTypes)) % len(dnspkg.RecordTypes)
				return m, nil
			}

		case "right", " ":
			if m.focused == fieldRecordType {
				m.recordIdx = (m.recordIdx + 1) % len(dnspkg.RecordTypes)
				return m, nil
			}

		case "enter":
			if m.focused == fieldRecordType {
				m.recordIdx = (m.recordIdx + 1) % len(dnspkg.RecordTypes)
				return m, nil
			}
			return m.submit()
		}
	}

	if m.focused == fieldDomain {
		var cmd tea.Cmd
		m.domain, cmd = m.domain.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m FormModel) submit() (FormModel, tea.Cmd) {
	domain := dnspkg.NormalizeDomain(m.domain.Value())
	if domain == "" {
		m.err = "domain is required"
		m.focused = fieldDomain
		m.updateFocus()
		return m, nil
	}

	rt := dnspkg.RecordTypes[m.recordIdx]
	return m, func() tea.Msg {
		return FormSubmitMsg{Domain: domain, Type: rt}
	}
}

func (m *FormModel) updateFocus() {
	if m.focused == fieldDomain {
		m.domain.Focus()
	} else {
		m.domain.Blur()
	}
}

func (m *FormModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the form.
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("New Check"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Width(16).Foreground(colorMuted)
	focusedLabel := lipgloss.NewStyle().Width(16).Foreground(colorHeader).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(colorRed)

	label := labelStyle
	if m.focused == fieldDomain {
		label = focusedLabel
	}
	b.WriteString(label.Render("Domain"))
	b.WriteString(m.domain.View())
	if m.err != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.err))
	}
	b.WriteString("\n\n")

	label = labelStyle
	if m.focused == fieldRecordType {
		label = focusedLabel
	}
	b.WriteString(label.Render("Record Type"))
	b.WriteString(m.renderRecordType())
	b.WriteString("\n\n")

	btnStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Background(colorHeader).
		Foreground(lipgloss.Color("#fff"))
	if m.focused == fieldSubmit {
		btnStyle = btnStyle.Background(colorHeaderDark).Bold(true)
	}
	b.WriteString(lipgloss.NewStyle().Width(16).Render(""))
	b.WriteString(btnStyle.Render("Check Propagation"))
	b.WriteString("\n")

	return BorderStyle.Render(b.String())
}

func (m FormModel) renderRecordType() string {
	parts := make([]string, len(dnspkg.RecordTypes))
	for i, rt := range dnspkg.RecordTypes {
		style := lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
		if i == m.recordIdx {
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fff")).
				Background(colorHeader).
				Padding(0, 1).
				Bold(true)
		}
		parts[i] = style.Render(string(rt))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
