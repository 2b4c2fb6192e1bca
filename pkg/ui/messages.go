package ui

import (
	"time"

	"github.com/fd1az/arbitrage-analyzer/pkg/ui/components"
)

// Message types for TUI updates.
// All values are pre-formatted by the reporter; the UI does not calculate.

// ScanMsg is sent after every block scan.
type ScanMsg struct {
	BlockNumber uint64
	Timestamp   time.Time
	GasGwei     float64
	Routes      []components.RouteRow
	Best        *components.CostBreakdown // nil when no route could be evaluated
	Summary     components.ScanRow
	Duration    time.Duration
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}
