package components

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus represents a connection's status.
type ConnectionStatus struct {
	Name       string
	Connected  bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders connection status.
type StatusComponent struct {
	connections map[string]ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		connections: make(map[string]ConnectionStatus),
	}
}

// Update records a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	s.connections[status.Name] = status
}

// Connected reports whether the named connection is up.
func (s *StatusComponent) Connected(name string) bool {
	return s.connections[name].Connected
}

// Inline renders every connection on one line for the status bar.
func (s *StatusComponent) Inline() string {
	parts := make([]string, 0, len(s.connections))
	for _, conn := range s.sorted() {
		if conn.Connected {
			label := conn.Name
			if conn.Latency > 0 {
				label = fmt.Sprintf("%s (%dms)", conn.Name, conn.Latency.Milliseconds())
			}
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true).Render("● "+label))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true).Render("○ "+conn.Name+" (disconnected)"))
		}
	}
	return strings.Join(parts, "  │  ")
}

// View renders the status component as a tree.
func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return "No connections"
	}

	var result string
	for _, conn := range s.sorted() {
		status := "● Connected"
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
		if !conn.Connected {
			status = "○ Waiting"
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
		}

		line := fmt.Sprintf("├─ %s: %s", conn.Name, style.Render(status))
		if conn.Connected && conn.Latency > 0 {
			line += fmt.Sprintf(" (%s)", conn.Latency.Round(time.Millisecond))
		}
		result += line + "\n"
	}

	return result
}

func (s *StatusComponent) sorted() []ConnectionStatus {
	out := make([]ConnectionStatus, 0, len(s.connections))
	for _, c := range s.connections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
