package app

import (
	"context"
	"testing"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/blockchain/domain"
)

type stubSubscriber struct {
	blocks chan *domain.Block
	state  domain.ConnectionState
	closed bool
}

func (s *stubSubscriber) Subscribe(context.Context) (<-chan *domain.Block, error) {
	return s.blocks, nil
}

func (s *stubSubscriber) LatestBlock(context.Context) (*domain.Block, error) {
	return &domain.Block{Number: 1}, nil
}

func (s *stubSubscriber) State() domain.ConnectionState { return s.state }

func (s *stubSubscriber) Status() domain.ConnectionStatus {
	return domain.ConnectionStatus{State: s.state, LastBlock: 7}
}

func (s *stubSubscriber) Close() error {
	s.closed = true
	return nil
}

type stubGasOracle struct{ wei uint64 }

func (s stubGasOracle) GetGasPrice(context.Context) (*domain.GasPrice, error) {
	return domain.NewGasPrice(uint256.NewInt(s.wei)), nil
}

func TestBlockchainService_Delegates(t *testing.T) {
	sub := &stubSubscriber{blocks: make(chan *domain.Block, 1), state: domain.StateConnected}
	svc := NewBlockchainService(sub, stubGasOracle{wei: 42})

	ch, err := svc.SubscribeBlocks(context.Background())
	if err != nil {
		t.Fatalf("SubscribeBlocks: %v", err)
	}
	sub.blocks <- &domain.Block{Number: 7}
	if b := <-ch; b.Number != 7 {
		t.Errorf("block = %d, want 7", b.Number)
	}

	price, err := svc.GetGasPrice(context.Background())
	if err != nil || price.Wei.Uint64() != 42 {
		t.Errorf("gas price = %v, %v; want 42", price, err)
	}
	if svc.ConnectionState() != domain.StateConnected {
		t.Errorf("state = %s", svc.ConnectionState())
	}
}

func TestBlockchainService_StatusAndClose(t *testing.T) {
	sub := &stubSubscriber{state: domain.StateReconnecting}
	svc := NewBlockchainService(sub, stubGasOracle{})

	if got := svc.Status(); got.State != domain.StateReconnecting || got.LastBlock != 7 {
		t.Errorf("status = %+v", got)
	}
	if b, err := svc.LatestBlock(context.Background()); err != nil || b.Number != 1 {
		t.Errorf("latest = %v, %v", b, err)
	}
	if err := svc.Close(); err != nil || !sub.closed {
		t.Errorf("close = %v, closed %v", err, sub.closed)
	}
}
