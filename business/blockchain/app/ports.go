// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
)

// BlockSubscriber delivers new blocks for the scanner.
type BlockSubscriber interface {
	// Subscribe connects and returns a channel of blocks, closed on shutdown.
	Subscribe(ctx context.Context) (<-chan *domain.Block, error)

	LatestBlock(ctx context.Context) (*domain.Block, error)

	State() domain.ConnectionState

	// Status reports the last block seen and the transport in use.
	Status() domain.ConnectionStatus

	Close() error
}

// GasOracle supplies the gas price used to cost each scan.
type GasOracle interface {
	GetGasPrice(ctx context.Context) (*domain.GasPrice, error)
}
