// Package domain holds block and connection types for the blockchain context.
package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Block is the subset of a header a scan is priced against.
type Block struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Timestamp  time.Time
	GasLimit   uint64
	GasUsed    uint64
	BaseFee    *uint256.Int // nil before London
}

// Age is how long ago the block was produced, never negative.
func (b *Block) Age(now time.Time) time.Duration {
	return max(now.Sub(b.Timestamp), 0)
}

// Utilization is gas used in basis points of the gas limit.
func (b *Block) Utilization() uint64 {
	if b.GasLimit == 0 {
		return 0
	}
	return b.GasUsed * 10_000 / b.GasLimit
}

type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
)

// ConnectionStatus is a snapshot of the head subscription.
type ConnectionStatus struct {
	State      ConnectionState
	Latency    time.Duration
	LastBlock  uint64
	LastUpdate time.Time
	Reconnects int
	UsingHTTP  bool
}

// Transport names the channel currently delivering heads.
func (s ConnectionStatus) Transport() string {
	if s.UsingHTTP {
		return "http"
	}
	return "ws"
}

// Healthy reports a connected subscription that has delivered a head
// within maxSilence. A zero maxSilence only checks the state.
func (s ConnectionStatus) Healthy(now time.Time, maxSilence time.Duration) bool {
	if s.State != StateConnected {
		return false
	}
	return maxSilence == 0 || (!s.LastUpdate.IsZero() && now.Sub(s.LastUpdate) <= maxSilence)
}

func (s ConnectionStatus) String() string {
	return fmt.Sprintf("%s via %s, last block %d, reconnects %d", s.State, s.Transport(), s.LastBlock, s.Reconnects)
}
