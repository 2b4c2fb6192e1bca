// Package asset describes the coins and ERC20 tokens a route can touch.
// Identity is the (chain, contract) pair; symbols are display metadata only.
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// maxDecimals rejects metadata no real token uses.
const maxDecimals = 36

// AssetID identifies an asset by chain and contract. The zero address is
// the chain's native coin.
type AssetID struct {
	chainID uint64
	address common.Address
}

func NewNativeAssetID(chainID uint64) AssetID {
	return AssetID{chainID: chainID}
}

// NewTokenAssetID panics on the zero address so a token can never collide
// with the native coin.
func NewTokenAssetID(chainID uint64, addr common.Address) AssetID {
	if addr == (common.Address{}) {
		panic("asset: zero token address, use NewNativeAssetID")
	}
	return AssetID{chainID: chainID, address: addr}
}

func (id AssetID) ChainID() uint64         { return id.chainID }
func (id AssetID) Address() common.Address { return id.address }
func (id AssetID) IsNative() bool          { return id.address == (common.Address{}) }
func (id AssetID) IsToken() bool           { return !id.IsNative() }

func (id AssetID) String() string {
	if id.IsNative() {
		return fmt.Sprintf("chain:%d/native", id.chainID)
	}
	return fmt.Sprintf("chain:%d/%s", id.chainID, id.address.Hex())
}

// Asset is immutable metadata for one AssetID.
type Asset struct {
	id       AssetID
	symbol   string
	name     string
	decimals uint8
}

// NewAsset panics on an empty symbol or implausible decimals; assets are
// built from constants or validated configuration.
func NewAsset(id AssetID, symbol, name string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > maxDecimals {
		panic(fmt.Sprintf("asset: %s has %d decimals", symbol, decimals))
	}
	if name == "" {
		name = symbol
	}
	return &Asset{id: id, symbol: symbol, name: name, decimals: decimals}
}

// MustNewToken builds an ERC20 asset.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	return NewAsset(NewTokenAssetID(chainID, address), symbol, name, decimals)
}

func (a *Asset) ID() AssetID             { return a.id }
func (a *Asset) Symbol() string          { return a.symbol }
func (a *Asset) Name() string            { return a.name }
func (a *Asset) Decimals() uint8         { return a.decimals }
func (a *Asset) ChainID() uint64         { return a.id.chainID }
func (a *Asset) Address() common.Address { return a.id.address }
func (a *Asset) String() string          { return a.symbol }

// Format renders a base-unit amount in whole units followed by the symbol.
func (a *Asset) Format(amount *uint256.Int) string {
	if amount == nil {
		return "-"
	}
	return fixedpoint.ToDecimal(amount, int32(a.decimals)).String() + " " + a.symbol
}
