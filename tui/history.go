package tui

import (
	"fmt"
	"strings"
	"time"

	dnspkg "dnsprop/dns"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistoryEntry stores a finished check and its results view.
type HistoryEntry struct {
	Domain     string
	RecordType dnspkg.RecordType
	Timestamp  time.Time
	Status     string
	Elapsed    time.Duration
	Summary    *dnspkg.CheckSummary

	Results ResultsModel
}

type historyItem struct {
	entry HistoryEntry
	index int
}

func (i historyItem) Title() string {
	return fmt.Sprintf("%s  %s", i.entry.Domain, i.entry.RecordType)
}

func (i historyItem) Description() string {
	return fmt.Sprintf("%s  %s", i.entry.Timestamp.Format("15:04:05"), i.entry.summaryText())
}

func (i historyItem) FilterValue() string {
	return i.entry.Domain
}

func (e HistoryEntry) summaryText() string {
	switch e.Status {
	case statusComplete:
		s := e.Summary
		return labelStyle(s.PercentPropagated).Render(
			fmt.Sprintf("%s: %d/%d in %s", s.StatusLabel(), s.Propagated, s.Total, dnspkg.FormatDuration(e.Elapsed)))
	case statusCancelled:
		return MutedStyle.Render(fmt.Sprintf("Cancelled after %d results", len(e.Results.results)))
	case statusError:
		return StatusRed.Render("✗ Error")
	default:
		return ""
	}
}

// HistorySelectMsg is sent when the user selects a history entry to view details.
type HistorySelectMsg struct {
	Index int
}

// HistoryRerunMsg is sent when the user wants to re-run a check from history.
type HistoryRerunMsg struct {
	Entry HistoryEntry
}

// HistoryModel holds the state for the history view.
type HistoryModel struct {
	list    list.Model
	entries []HistoryEntry
	width   int
	height  int
}

func NewHistoryModel(entries []HistoryEntry) HistoryModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e, index: i}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorHeader).
		BorderForeground(colorHeader)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorMuted).
		BorderForeground(colorHeader)

	l := list.New(items, delegate, 0, 0)
	l.Title = "Check History"
	l.Styles.Title = HeaderStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return HistoryModel{
		list:    l,
		entries: entries,
	}
}

func (m *HistoryModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w-4, h-8)
}

func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(historyItem); ok {
				return m, func() tea.Msg {
					return HistorySelectMsg{Index: item.index}
				}
			}
		case "r":
			if item, ok := m.list.SelectedItem().(historyItem); ok {
				return m, func() tea.Msg {
					return HistoryRerunMsg{Entry: item.entry}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	if len(m.entries) == 0 {
		msg := lipgloss.NewStyle().
			Foreground(colorMuted).
			Align(lipgloss.Center).
			Render("No checks yet. Press n to start a new check.")
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width-4, m.height-8, lipgloss.Center, lipgloss.Center, msg)
		}
		return msg
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("enter: view details  r: re-run  ↑/↓: navigate"))
	return b.String()
}
