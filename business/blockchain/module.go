// Package blockchain implements the blockchain bounded context for Ethereum integration.
package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/app"
	blockchainDI "github.com/fd1az/arbitrage-analyzer/business/blockchain/di"
	"github.com/fd1az/arbitrage-analyzer/business/blockchain/infra/ethereum"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register BlockSubscriber (private - internal dependency)
	di.RegisterToken(c, blockchainDI.BlockSubscriber, func(sr di.ServiceRegistry) app.BlockSubscriber {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		subCfg := ethereum.DefaultSubscriberConfig(cfg.Ethereum.WebSocketURL, cfg.Ethereum.HTTPURL)
		subCfg.MaxReconnects = cfg.Ethereum.MaxReconnects
		if cfg.Ethereum.InitialBackoff > 0 {
			subCfg.InitialBackoff = cfg.Ethereum.InitialBackoff
		}
		if cfg.Ethereum.MaxBackoff > 0 {
			subCfg.MaxBackoff = cfg.Ethereum.MaxBackoff
		}
		sub, err := ethereum.NewSubscriber(subCfg, log)
		if err != nil {
			panic("failed to create subscriber: " + err.Error())
		}
		return sub
	})

	// Register GasOracle (private - internal dependency)
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var client ethereum.GasPriceClient
		if ec, ok := sr.Get("ethClient").(*ethclient.Client); ok && ec != nil {
			client = ec
		}

		oracle, err := ethereum.NewGasOracle(client, ethereum.DefaultGasOracleConfig(cfg.Ethereum.MaxGasPriceGwei), log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		sub := blockchainDI.GetBlockSubscriber(sr)
		oracle := blockchainDI.GetGasOracle(sr)
		return app.NewBlockchainService(sub, oracle)
	})

	return nil
}

// Startup initializes the blockchain module. Connections are established
// lazily by Subscribe so that offline commands never dial.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "blockchain module started",
		"ws", mono.Config().Ethereum.WebSocketURL != "",
		"http", mono.Config().Ethereum.HTTPURL != "")
	return nil
}
