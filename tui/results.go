package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	dnspkg "dnsprop/dns"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg carries one progress update from a running check.
type ProgressMsg struct {
	dnspkg.Progress
}

// CheckDoneMsg is sent when a check finishes, fails or is cancelled.
type CheckDoneMsg struct {
	SessionID string
	Summary   *dnspkg.CheckSummary
	Elapsed   time.Duration
	Err       error
}

// ExportedMsg reports the outcome of a CSV export.
type ExportedMsg struct {
	Path string
	Err  error
}

const (
	statusComplete  = "complete"
	statusCancelled = "cancelled"
	statusError     = "error"
)

// ResultsModel holds the state for the results dashboard view.
type ResultsModel struct {
	domain     string
	recordType dnspkg.RecordType
	sessionID  string
	latest     *dnspkg.Latest
	exportDir  string

	results []dnspkg.ProbeResult
	summary *dnspkg.CheckSummary
	percent int
	total   int

	checking  bool
	done      bool
	status    string
	errorMsg  string
	exportMsg string
	startTime time.Time
	elapsed   time.Duration

	scrollOffset int
	width        int
	height       int

	spinner  spinner.Model
	bar      progress.Model
	updateCh chan tea.Msg
	cancel   context.CancelFunc
}

// NewResultsModel creates a results model for a submitted check. Session
// tracking goes through latest so that late messages from an earlier check
// are ignored.
func NewResultsModel(msg FormSubmitMsg, latest *dnspkg.Latest) ResultsModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(StatusYellow),
	)
	return ResultsModel{
		domain:     msg.Domain,
		recordType: msg.Type,
		latest:     latest,
		exportDir:  ".",
		spinner:    s,
		bar:        progress.New(progress.WithGradient("#047857", "#34d399"), progress.WithWidth(40)),
		updateCh:   make(chan tea.Msg, 64),
	}
}

func (m *ResultsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = min(max(w-20, 20), 60)
}

// StartCheck runs the check in a background goroutine and returns the
// command that starts listening for its updates.
func (m *ResultsModel) StartCheck(prober *dnspkg.Prober, points []dnspkg.VantagePoint) tea.Cmd {
	m.checking = true
	m.startTime = time.Now()
	m.total = len(points)
	m.sessionID = m.latest.Begin()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	ch := m.updateCh
	sessionID := m.sessionID
	domain := m.domain
	rt := m.recordType
	start := m.startTime

	go func() {
		summary, err := prober.Probe(ctx, sessionID, domain, rt, points, func(p dnspkg.Progress) {
			select {
			case ch <- ProgressMsg{Progress: p}:
			case <-ctx.Done():
			}
		})
		if ctx.Err() != nil {
			return
		}
		select {
		case ch <- CheckDoneMsg{SessionID: sessionID, Summary: summary, Elapsed: time.Since(start), Err: err}:
		case <-ctx.Done():
		}
	}()

	return tea.Batch(waitForUpdate(ch), m.spinner.Tick)
}

// waitForUpdate returns a tea.Cmd that reads one message from the update channel.
func waitForUpdate(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages for the results view.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		if !m.checking || msg.SessionID != m.sessionID || !m.latest.IsCurrent(msg.SessionID) {
			return m, nil
		}
		if msg.Result != nil {
			m.results = append(m.results, *msg.Result)
		}
		m.percent = msg.Percent
		m.total = msg.Total
		return m, waitForUpdate(m.updateCh)

	case CheckDoneMsg:
		if msg.SessionID != m.sessionID {
			return m, nil
		}
		m.checking = false
		m.done = true
		m.elapsed = msg.Elapsed
		m.cancel = nil
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.status = statusCancelled
		case msg.Err != nil:
			m.status = statusError
			m.errorMsg = msg.Err.Error()
		case !m.latest.Commit(msg.Summary):
			m.status = statusCancelled
		default:
			m.status = statusComplete
			m.summary = msg.Summary
			m.results = msg.Summary.Results
			m.percent = 100
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.exportMsg = StatusRed.Render("Export failed: " + msg.Err.Error())
		} else {
			m.exportMsg = StatusGreen.Render("Saved " + msg.Path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.checking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		lines := len(m.results)
		switch msg.String() {
		case "up", "k":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
		case "down", "j":
			if m.scrollOffset < lines {
				m.scrollOffset++
			}
		case "pgup":
			m.scrollOffset = max(m.scrollOffset-10, 0)
		case "pgdown":
			m.scrollOffset = min(m.scrollOffset+10, lines)
		case "e":
			if m.summary != nil {
				return m, exportCSV(m.summary, m.exportDir)
			}
		}
		return m, nil
	}

	return m, nil
}

func exportCSV(s *dnspkg.CheckSummary, dir string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, dnspkg.CSVFilename(s))
		if err := os.WriteFile(path, []byte(dnspkg.ToCSV(s)), 0o644); err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

// Cancel stops the running check. Partial results stay on screen.
func (m *ResultsModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.checking {
		select {
		case m.updateCh <- CheckDoneMsg{SessionID: m.sessionID, Elapsed: time.Since(m.startTime), Err: context.Canceled}:
		default:
		}
	}
}

func (m *ResultsModel) IsChecking() bool {
	return m.checking
}

// View renders the results dashboard.
func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Results"))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(truncate(fmt.Sprintf("Domain: %s  |  Type: %s", m.domain, m.recordType), max(m.width-2, 20))))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d/%d", len(m.results), m.total)))
	b.WriteString("\n\n")

	used := 6
	switch {
	case m.checking:
		b.WriteString(m.spinner.View())
		b.WriteString(" Checking vantage points...")
		b.WriteString("\n\n")
		used += 2
	case m.summary != nil:
		summary := m.renderSummary()
		b.WriteString(summary)
		b.WriteString("\n\n")
		used += lipgloss.Height(summary) + 1
	case m.done:
		b.WriteString(m.renderBanner())
		b.WriteString("\n\n")
		used += 2
	}

	if m.exportMsg != "" {
		b.WriteString(m.exportMsg)
		b.WriteString("\n\n")
		used += 2
	}

	panelWidth := max(m.width-4, 40)
	// Top-level View adds header, help bar and two blank lines.
	panelHeight := max(m.height-4-used, 10)
	b.WriteString(m.renderPanel(panelWidth, panelHeight))

	return b.String()
}

func (m ResultsModel) renderBanner() string {
	switch m.status {
	case statusCancelled:
		return MutedStyle.Render("Cancelled, partial results shown")
	case statusError:
		return StatusRed.Render("✗ Check failed: " + m.errorMsg)
	default:
		return ""
	}
}

func (m ResultsModel) renderSummary() string {
	s := m.summary
	var b strings.Builder
	b.WriteString(labelStyle(s.PercentPropagated).Render(fmt.Sprintf("%s (%d%%)", s.StatusLabel(), s.PercentPropagated)))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  in %s", dnspkg.FormatDuration(m.elapsed))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s  %s",
		StatusGreen.Render(fmt.Sprintf("%d propagated", s.Propagated)),
		StatusYellow.Render(fmt.Sprintf("%d not propagated", s.NotPropagated)),
		StatusRed.Render(fmt.Sprintf("%d errors", s.Errors)),
		MutedStyle.Render(fmt.Sprintf("avg %dms", s.AvgResponseMs)),
	)
	if len(s.DistinctValues) > 0 {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(truncate("Values: "+strings.Join(s.DistinctValues, ", "), max(m.width-4, 20))))
	}
	return b.String()
}

// renderPanel lists results grouped by region, scrolled to scrollOffset.
func (m ResultsModel) renderPanel(width, panelHeight int) string {
	var lines []string
	for _, g := range dnspkg.GroupByRegion(m.results) {
		lines = append(lines, RegionStyle.Render(string(g.Region)))
		for _, r := range g.Results {
			lines = append(lines, m.renderEntry(r, width))
		}
	}

	var b strings.Builder
	if len(lines) == 0 {
		b.WriteString(MutedStyle.Render("  Waiting for the first vantage point..."))
	} else {
		b.WriteString(MutedStyle.Render(m.renderEntryLine("", "LOCATION", "SERVER", "STATUS", "TIME", "RECORDS", width)))
		b.WriteString("\n")

		// Border (2) and column header (1).
		visible := max(panelHeight-3, 1)
		start := min(m.scrollOffset, max(len(lines)-visible, 0))
		end := min(start+visible, len(lines))
		if start > 0 {
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  ↑ %d more above", start)))
			b.WriteString("\n")
			end = max(end-1, start)
		}
		b.WriteString(strings.Join(lines[start:end], "\n"))
		if end < len(lines) {
			b.WriteString("\n")
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  ↓ %d more below", len(lines)-end)))
		}
	}

	return BorderStyle.Width(width).Render(b.String())
}

func (m ResultsModel) renderEntry(r dnspkg.ProbeResult, width int) string {
	timeStr := "-"
	detail := r.Error
	if r.Status != dnspkg.StatusError {
		timeStr = fmt.Sprintf("%dms", r.ResponseTimeMs)
		detail = recordData(r.Records)
	}
	return m.renderEntryLine(r.Flag, r.Location, r.Server, statusStyle(r.Status).Render(string(r.Status)), timeStr, detail, width)
}

// renderEntryLine lays out one row with proportional column widths.
func (m ResultsModel) renderEntryLine(flag, name, server, status, timeVal, detail string, panelWidth int) string {
	// Panel inner width = panelWidth - border(2) - padding(2) - indent(2).
	innerWidth := max(panelWidth-6, 60)

	// Fixed: flag(3) + status(16) + time(8).
	remaining := innerWidth - 27
	nameW := max(remaining*30/100, 8)
	serverW := max(remaining*25/100, 8)
	detailW := max(remaining-nameW-serverW, 4)

	return fmt.Sprintf("  %s%s%s%s%s%s",
		lipgloss.NewStyle().Width(3).Render(flag),
		lipgloss.NewStyle().Width(nameW).Render(truncate(name, nameW-1)),
		lipgloss.NewStyle().Width(serverW).Render(truncate(server, serverW-1)),
		lipgloss.NewStyle().Width(16).Render(status),
		lipgloss.NewStyle().Width(8).Render(timeVal),
		truncate(detail, detailW),
	)
}

func recordData(records []dnspkg.Record) string {
	data := make([]string, len(records))
	for i, r := range records {
		data[i] = r.Data
	}
	return strings.Join(data, "; ")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
