package asset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type symbolKey struct {
	chainID uint64
	symbol  string
}

// Registry indexes assets by identity and by per-chain symbol. Symbols are
// unique within a chain so a configured symbol resolves to one contract.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byID     map[AssetID]*Asset
	bySymbol map[symbolKey]*Asset
}

func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[symbolKey]*Asset),
	}
}

// Register is TryRegister for compile-time constants; it panics on conflict.
func (r *Registry) Register(a *Asset) {
	if err := r.TryRegister(a); err != nil {
		panic(err.Error())
	}
}

// TryRegister adds a, rejecting a duplicate ID or a symbol already used by
// another asset on the same chain.
func (r *Registry) TryRegister(a *Asset) error {
	if a == nil {
		return fmt.Errorf("asset: nil asset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.id]; ok {
		return fmt.Errorf("asset: %s already registered", a.id)
	}
	key := symbolKey{a.ChainID(), a.symbol}
	if other, ok := r.bySymbol[key]; ok {
		return fmt.Errorf("asset: symbol %s on chain %d already used by %s", a.symbol, a.ChainID(), other.id)
	}
	r.byID[a.id] = a
	r.bySymbol[key] = a
	return nil
}

func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// GetToken looks up an ERC20 by contract. The zero address is never a token.
func (r *Registry) GetToken(chainID uint64, address common.Address) (*Asset, bool) {
	if address == (common.Address{}) {
		return nil, false
	}
	return r.Get(AssetID{chainID: chainID, address: address})
}

// BySymbol resolves a symbol on one chain.
func (r *Registry) BySymbol(chainID uint64, symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.bySymbol[symbolKey{chainID, symbol}]
	return a, ok
}

func (r *Registry) Decimals(chainID uint64, address common.Address) (uint8, bool) {
	a, ok := r.GetToken(chainID, address)
	if !ok {
		return 0, false
	}
	return a.decimals, true
}

// TokenDecimals returns the decimals of every token on a chain keyed by
// contract address.
func (r *Registry) TokenDecimals(chainID uint64) map[common.Address]uint8 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[common.Address]uint8)
	for id, a := range r.byID {
		if id.IsToken() && id.chainID == chainID {
			out[id.address] = a.decimals
		}
	}
	return out
}

// Tokens lists a chain's tokens ordered by symbol.
func (r *Registry) Tokens(chainID uint64) []*Asset {
	r.mu.RLock()
	out := make([]*Asset, 0, len(r.byID))
	for id, a := range r.byID {
		if id.IsToken() && id.chainID == chainID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
