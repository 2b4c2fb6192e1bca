package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/arbitrage-analyzer/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseStartup   Phase = "startup"   // Connecting, waiting for the first block
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// StartupDelay is how long the startup screen shows before modules start.
const StartupDelay = 500 * time.Millisecond

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	routes  *components.RoutesComponent
	costs   *components.CostsComponent
	history *components.HistoryComponent
	stats   *components.StatsComponent
	status  *components.StatusComponent

	keys KeyMap
	help help.Model

	phase        Phase
	startupTime  time.Time
	modulesFired bool

	// State
	quitting     bool
	paused       bool
	width        int
	height       int
	currentBlock uint64
	gasGwei      float64
	lastUpdate   time.Time
	lastScanTime time.Time
	errors       []ErrorEntry // last 3
	logs         []string     // last 5
	totalScanMs  int64
}

// New creates a new TUI model.
func New() Model {
	status := components.NewStatusComponent()
	status.Update(components.ConnectionStatus{Name: "Ethereum"})

	return Model{
		routes:      components.NewRoutesComponent(),
		costs:       components.NewCostsComponent(),
		history:     components.NewHistoryComponent(50, 8),
		stats:       components.NewStatsComponent(),
		status:      status,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		phase:       PhaseStartup,
		startupTime: time.Now(),
		errors:      make([]ErrorEntry, 0, 3),
		logs:        make([]string, 0, 5),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Sort):
			m.routes.ToggleOrder()
		case key.Matches(msg, m.keys.Clear):
			m.history.Clear()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Up):
			m.history.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.history.ScrollDown()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if !m.modulesFired && time.Since(m.startupTime) >= StartupDelay {
			m.modulesFired = true
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case ScanMsg:
		m.currentBlock = msg.BlockNumber
		m.gasGwei = msg.GasGwei
		m.lastScanTime = time.Now()
		m.lastUpdate = time.Now()
		m.phase = PhaseDashboard
		if m.paused {
			return m, nil
		}

		m.routes.Update(msg.BlockNumber, msg.Routes)
		m.costs.Set(msg.Best)
		m.history.Add(msg.Summary)

		s := m.stats.Stats()
		s.BlocksScanned++
		s.RoutesEvaluated += int64(msg.Summary.Routes - msg.Summary.Failed)
		s.Profitable += int64(msg.Summary.Profitable)
		s.Failures += int64(msg.Summary.Failed)
		if msg.Summary.Opportunity {
			s.Opportunities++
		}
		m.totalScanMs += msg.Duration.Milliseconds()
		s.AvgScanMs = float64(m.totalScanMs) / float64(s.BlocksScanned)
		m.stats.Update(s)

	case ConnectionStatusMsg:
		m.status.Update(components.ConnectionStatus{
			Name:       msg.Name,
			Connected:  msg.Connected,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
		s := m.stats.Stats()
		s.Errors++
		m.stats.Update(s)

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", timestamp, level, message))
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseStartup {
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(BannerStyle.Render(" ⚡ Flash-Loan Route Scanner "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.routes.View() + "\n\n" + m.costs.View()
	rightCol := m.history.View() + "\n\n" + m.stats.View()

	if m.width > 120 {
		left := PanelStyle.Width(m.width/2 - 2).Render(leftCol)
		right := PanelStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 80
		}
		b.WriteString(PanelStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(PanelStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(FailureTitle.Render("ERRORS"))
		b.WriteString(FaintStyle.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(FailureStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(FaintStyle.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(NoticeStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(KeyHelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderStartupScreen renders the loading screen shown until the first scan.
func (m Model) renderStartupScreen() string {
	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(HeadingStyle.Render("  ⚡ Flash-Loan Route Scanner"))
	sb.WriteString("\n\n")

	spinners := []string{"◐", "◓", "◑", "◒"}
	idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
	sb.WriteString(NoticeStyle.Render("  " + spinners[idx] + " Starting up..."))
	sb.WriteString("\n\n")

	for _, line := range strings.Split(strings.TrimRight(m.status.View(), "\n"), "\n") {
		sb.WriteString("  " + line + "\n")
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(FaintStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	for _, l := range m.logs {
		sb.WriteString(FaintStyle.Render("  " + l))
		sb.WriteString("\n")
	}
	sb.WriteString(FaintStyle.Render("  Waiting for first Ethereum block..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastScanTime) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		parts = append(parts, ProfitStyle.Bold(true).Render(spinners[idx]+" Scanning"))
	}

	parts = append(parts, fmt.Sprintf("Block: #%d", m.currentBlock))
	if m.gasGwei > 0 {
		parts = append(parts, fmt.Sprintf("Gas: %.1f gwei", m.gasGwei))
	}
	parts = append(parts, m.status.Inline())

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, FaintStyle.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called once the startup screen is shown and modules
// should start. Set by main.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
