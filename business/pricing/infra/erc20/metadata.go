// Package erc20 resolves ERC-20 token metadata.
package erc20

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/evm"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/cache"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
)

// DecimalsABI is the subset of the ERC-20 interface used here.
const DecimalsABI = `[
	{
		"inputs": [],
		"name": "decimals",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var _ app.TokenMetadata = (*Metadata)(nil)

// Metadata answers decimals from configuration first and falls back to an
// on-chain decimals() call. On-chain answers are cached without expiry.
type Metadata struct {
	client  evm.ContractCaller
	known   map[common.Address]uint8
	fetched *cache.Cache[common.Address, uint8]
	cb      *circuitbreaker.CircuitBreaker[[]byte]
}

// NewMetadata creates a resolver seeded with configured decimals. client may be
// nil, in which case unknown tokens fail.
func NewMetadata(client evm.ContractCaller, known map[common.Address]uint8) *Metadata {
	seed := make(map[common.Address]uint8, len(known))
	for k, v := range known {
		seed[k] = v
	}
	return &Metadata{
		client:  client,
		known:   seed,
		fetched: cache.New[common.Address, uint8](0),
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("erc20")),
	}
}

// Decimals returns the token's decimals.
func (m *Metadata) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if d, ok := m.known[token]; ok {
		return d, nil
	}
	if d, ok := m.fetched.Get(ctx, token); ok {
		return d, nil
	}
	if m.client == nil {
		return 0, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("unknown token "+token.Hex()))
	}

	contract, err := evm.NewContract(m.client, token, DecimalsABI, m.cb)
	if err != nil {
		return 0, err
	}
	out, err := contract.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("unexpected decimals type %T", out[0])))
	}
	m.fetched.Set(ctx, token, d, 0)
	return d, nil
}

// Close releases the cache janitor.
func (m *Metadata) Close() {
	m.fetched.Close()
}
