// Package evm holds the contract-call plumbing shared by the on-chain
// pricing adapters.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
)

// ContractCaller executes read-only calls. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract is a read-only binding of an ABI to an address.
type Contract struct {
	caller  ContractCaller
	address common.Address
	abi     abi.ABI
	cb      *circuitbreaker.CircuitBreaker[[]byte]
}

// NewContract parses abiJSON and binds it to address. Calls go through cb.
func NewContract(caller ContractCaller, address common.Address, abiJSON string, cb *circuitbreaker.CircuitBreaker[[]byte]) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return &Contract{caller: caller, address: address, abi: parsed, cb: cb}, nil
}

// Address returns the bound address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the parsed ABI.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Call packs method with args, executes it at the latest block and unpacks
// the outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	if c.caller == nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("no ethereum client configured"))
	}

	callData, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	to := c.address
	result, err := c.cb.Execute(func() ([]byte, error) {
		return c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: callData}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, c.address.Hex())))
	}

	outputs, err := c.abi.Unpack(method, result)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to decode "+method))
	}
	return outputs, nil
}
