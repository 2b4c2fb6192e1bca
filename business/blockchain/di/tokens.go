// Package di exposes the blockchain module's container tokens.
package di

import (
	"github.com/fd1az/arbitrage-analyzer/business/blockchain/app"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
)

// BlockchainService is the only token other modules may resolve.
var BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")

// Module-internal adapters.
var (
	BlockSubscriber = di.NewToken[app.BlockSubscriber]("blockchain:blockSubscriber")
	GasOracle       = di.NewToken[app.GasOracle]("blockchain:gasOracle")
)

func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}

func GetBlockSubscriber(c di.ServiceRegistry) app.BlockSubscriber {
	return di.GetToken(c, BlockSubscriber)
}

func GetGasOracle(c di.ServiceRegistry) app.GasOracle {
	return di.GetToken(c, GasOracle)
}
