package tui

import (
	"time"

	dnspkg "dnsprop/dns"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// View represents which sub-view is currently active.
type View int

const (
	ViewForm View = iota
	ViewResults
	ViewHistory
	ViewConfig
)

// Model is the top-level Bubble Tea model that manages view state and routing.
type Model struct {
	currentView View
	config      *dnspkg.Config
	prober      *dnspkg.Prober
	latest      *dnspkg.Latest
	logger      *zap.Logger
	width       int
	height      int
	checkActive bool
	form        FormModel
	results     ResultsModel
	history     HistoryModel
	configView  ConfigModel
	historyData []HistoryEntry
	help        help.Model
	showHelp    bool
}

// New creates the TUI model. configPath is where the vantage point view saves.
func New(cfg *dnspkg.Config, configPath string, prober *dnspkg.Prober, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		currentView: ViewForm,
		config:      cfg,
		prober:      prober,
		latest:      &dnspkg.Latest{},
		logger:      logger,
		form:        NewFormModel(cfg.Defaults.RecordType),
		history:     NewHistoryModel(nil),
		configView:  NewConfigModel(cfg, configPath),
		help:        help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.SetSize(msg.Width, msg.Height)
		m.results.SetSize(msg.Width, msg.Height)
		m.history.SetSize(msg.Width, msg.Height)
		m.configView.SetSize(msg.Width, msg.Height)
		return m, nil

	case FormSubmitMsg:
		return m.startCheck(msg)

	case HistoryRerunMsg:
		return m.startCheck(FormSubmitMsg{Domain: msg.Entry.Domain, Type: msg.Entry.RecordType})

	case ProgressMsg, ExportedMsg:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case CheckDoneMsg:
		if msg.SessionID != m.results.sessionID {
			m.logger.Debug("Dropping result of stale check", zap.String("session_id", msg.SessionID))
			return m, nil
		}
		m.checkActive = false
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		m.appendHistory()
		if msg.Err != nil {
			m.logger.Warn("Check did not complete", zap.String("session_id", msg.SessionID), zap.Error(msg.Err))
		}
		return m, cmd

	case ConfigSavedMsg:
		if msg.Err != nil {
			m.logger.Error("Failed to save config", zap.String("path", msg.Path), zap.Error(msg.Err))
		}
		var cmd tea.Cmd
		m.configView, cmd = m.configView.Update(msg)
		return m, cmd

	case HistorySelectMsg:
		if msg.Index >= 0 && msg.Index < len(m.historyData) {
			m.results = m.historyData[msg.Index].Results
			m.results.SetSize(m.width, m.height)
			m.currentView = ViewResults
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		inputActive := m.currentView == ViewForm

		if msg.String() == "?" && !inputActive {
			m.showHelp = true
			return m, nil
		}

		if msg.String() == "esc" {
			if m.checkActive && m.currentView == ViewResults {
				m.results.Cancel()
				return m, nil
			}
			if inputActive {
				m.currentView = ViewHistory
				m.history = NewHistoryModel(m.historyData)
				m.history.SetSize(m.width, m.height)
				return m, nil
			}
		}

		if msg.String() == "ctrl+c" {
			// The first ctrl+c cancels a running check, the second quits.
			if m.checkActive && m.currentView == ViewResults {
				m.results.Cancel()
				return m, nil
			}
			return m, tea.Quit
		}

		if inputActive {
			break
		}

		if msg.String() == "q" {
			return m, tea.Quit
		}

		if !m.checkActive {
			switch msg.String() {
			case "n":
				m.currentView = ViewForm
				m.form = NewFormModel(m.config.Defaults.RecordType)
				m.form.SetSize(m.width, m.height)
				return m, m.form.Init()
			case "h":
				m.currentView = ViewHistory
				m.history = NewHistoryModel(m.historyData)
				m.history.SetSize(m.width, m.height)
				return m, nil
			case "v":
				m.currentView = ViewConfig
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewResults:
		m.results, cmd = m.results.Update(msg)
	case ViewHistory:
		m.history, cmd = m.history.Update(msg)
	case ViewConfig:
		m.configView, cmd = m.configView.Update(msg)
	}
	return m, cmd
}

func (m Model) startCheck(msg FormSubmitMsg) (tea.Model, tea.Cmd) {
	if m.checkActive {
		m.results.Cancel()
	}
	m.results = NewResultsModel(msg, m.latest)
	m.results.SetSize(m.width, m.height)
	m.currentView = ViewResults
	m.checkActive = true
	cmd := m.results.StartCheck(m.prober, m.configView.Selected())
	m.logger.Info("Check started",
		zap.String("session_id", m.results.sessionID),
		zap.String("domain", msg.Domain),
		zap.String("record_type", string(msg.Type)),
	)
	return m, cmd
}

const (
	minWidth  = 80
	minHeight = 24
)

func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		msg := lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true).
			Align(lipgloss.Center).
			Render("Terminal too small. Resize to at least 80x24.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	if m.showHelp {
		return renderHelpOverlay(m.width, m.height)
	}

	var content string
	switch m.currentView {
	case ViewForm:
		content = m.form.View()
	case ViewResults:
		content = m.results.View()
	case ViewHistory:
		content = m.history.View()
	case ViewConfig:
		content = m.configView.View()
	}

	m.help.Width = m.width
	helpBar := m.help.View(keyMapForView(m.currentView, m.checkActive, m.results.summary != nil))

	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("dnsprop"),
		"",
		content,
		"",
		helpBar,
	)
}

// appendHistory records the finished check, most recent first.
func (m *Model) appendHistory() {
	entry := HistoryEntry{
		Domain:     m.results.domain,
		RecordType: m.results.recordType,
		Timestamp:  time.Now(),
		Status:     m.results.status,
		Elapsed:    m.results.elapsed,
		Summary:    m.results.summary,
		Results:    m.results,
	}
	m.historyData = append([]HistoryEntry{entry}, m.historyData...)
}
