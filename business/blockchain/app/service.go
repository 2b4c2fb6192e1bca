package app

import (
	"context"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
)

// BlockchainService is the blockchain context's facade for other modules.
type BlockchainService struct {
	subscriber BlockSubscriber
	gasOracle  GasOracle
}

func NewBlockchainService(subscriber BlockSubscriber, gasOracle GasOracle) *BlockchainService {
	return &BlockchainService{
		subscriber: subscriber,
		gasOracle:  gasOracle,
	}
}

// SubscribeBlocks starts the block subscription and returns the channel.
func (s *BlockchainService) SubscribeBlocks(ctx context.Context) (<-chan *domain.Block, error) {
	return s.subscriber.Subscribe(ctx)
}

// LatestBlock fetches the chain head without subscribing.
func (s *BlockchainService) LatestBlock(ctx context.Context) (*domain.Block, error) {
	return s.subscriber.LatestBlock(ctx)
}

// GetGasPrice returns the current gas price, clamped by the oracle's ceiling.
func (s *BlockchainService) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return s.gasOracle.GetGasPrice(ctx)
}

func (s *BlockchainService) ConnectionState() domain.ConnectionState {
	return s.subscriber.State()
}

func (s *BlockchainService) Status() domain.ConnectionStatus {
	return s.subscriber.Status()
}

// Close stops the block subscription.
func (s *BlockchainService) Close() error {
	return s.subscriber.Close()
}
