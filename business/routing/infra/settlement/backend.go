// Package settlement implements the settlement backend against a flash-loan
// executor contract. Nothing is signed or submitted: settlement is simulated
// with eth_call and gas is estimated.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	routingApp "github.com/fd1az/arbitrage-analyzer/business/routing/app"
	"github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

const tracerName = "settlement"

var _ routingApp.SettlementBackend = (*Backend)(nil)

// ContractClient is the subset of ethclient.Client used for simulation.
type ContractClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Backend answers token/venue support from configuration and simulates
// initiateArbitrage on the executor.
type Backend struct {
	client      ContractClient
	executor    common.Address
	caller      common.Address
	executorABI abi.ABI

	tokens map[common.Address]bool
	venues config.VenuesConfig

	cb     *circuitbreaker.CircuitBreaker[[]byte]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewBackend creates a backend. client may be nil when only support checks
// are needed (offline commands).
func NewBackend(client ContractClient, cfg *config.Config, log logger.LoggerInterface) (*Backend, error) {
	parsedABI, err := abi.JSON(strings.NewReader(ExecutorABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse executor ABI: %w", err)
	}

	tokens := make(map[common.Address]bool, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		tokens[t.AddressHex()] = true
	}

	b := &Backend{
		client:      client,
		executorABI: parsedABI,
		tokens:      tokens,
		venues:      cfg.Venues,
		logger:      log,
		tracer:      otel.Tracer(tracerName),
	}
	if common.IsHexAddress(cfg.Settlement.ExecutorAddress) {
		b.executor = common.HexToAddress(cfg.Settlement.ExecutorAddress)
	}
	if common.IsHexAddress(cfg.Settlement.CallerAddress) {
		b.caller = common.HexToAddress(cfg.Settlement.CallerAddress)
	}

	cbCfg := circuitbreaker.DefaultConfig("settlement-executor")
	cbCfg.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		_, reverted := revertReason(err)
		return reverted
	}
	b.cb = circuitbreaker.New[[]byte](cbCfg)
	return b, nil
}

// IsTokenSupported reports whether token is in the configured token set.
func (b *Backend) IsTokenSupported(token common.Address) bool {
	return b.tokens[token]
}

// VenueRouterConfigured reports whether venue has a router address.
func (b *Backend) VenueRouterConfigured(venue domain.Venue) bool {
	_, ok := b.venues.RouterAddress(venue.String())
	return ok
}

// InitiateSettlement simulates initiateArbitrage(asset, amount, routeId).
// A revert is a failed result, not an error; transport problems are errors.
func (b *Backend) InitiateSettlement(ctx context.Context, asset common.Address, amount *uint256.Int, routeID domain.RouteID) (domain.SettlementResult, error) {
	ctx, span := b.tracer.Start(ctx, "settlement.initiate",
		trace.WithAttributes(
			attribute.String("asset", asset.Hex()),
			attribute.String("amount", amount.Dec()),
			attribute.Int64("route_id", int64(routeID)),
		),
	)
	defer span.End()

	if b.client == nil || b.executor == (common.Address{}) {
		err := apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext("executor not configured"))
		span.RecordError(err)
		return domain.SettlementResult{}, err
	}

	data, err := b.executorABI.Pack("initiateArbitrage", asset, amount.ToBig(), new(big.Int).SetUint64(uint64(routeID)))
	if err != nil {
		return domain.SettlementResult{}, apperror.Internal(apperror.CodeSettlementFailed, "encode initiateArbitrage", err)
	}
	msg := ethereum.CallMsg{From: b.caller, To: &b.executor, Data: data}

	out, err := b.cb.Execute(func() ([]byte, error) {
		return b.client.CallContract(ctx, msg, nil)
	})
	if err != nil {
		if reason, reverted := revertReason(err); reverted {
			span.SetAttributes(attribute.String("revert_reason", reason))
			b.logger.Info(ctx, "settlement simulation reverted", "route_id", routeID, "reason", reason)
			return domain.SettlementResult{Success: false, Reason: reason}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return domain.SettlementResult{}, apperror.External(apperror.CodeSettlementFailed, "executor call", err)
	}

	outputs, err := b.executorABI.Unpack("initiateArbitrage", out)
	if err != nil || len(outputs) != 1 {
		return domain.SettlementResult{}, apperror.New(apperror.CodeSettlementFailed,
			apperror.WithCause(err),
			apperror.WithContext("decode initiateArbitrage result"))
	}
	ok, _ := outputs[0].(bool)
	if !ok {
		return domain.SettlementResult{Success: false, Reason: "executor returned false"}, nil
	}

	gas, err := b.client.EstimateGas(ctx, msg)
	if err != nil {
		b.logger.Warn(ctx, "settlement gas estimate failed", "route_id", routeID, "error", err)
	}

	span.SetAttributes(attribute.Int64("gas_estimate", int64(gas)))
	span.SetStatus(codes.Ok, "simulated")
	return domain.SettlementResult{Success: true, GasEstimate: gas}, nil
}

// revertReason extracts the revert message from a node error, if any.
func revertReason(err error) (string, bool) {
	var dataErr interface{ ErrorData() interface{} }
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if reason, uerr := abi.UnpackRevert(common.FromHex(hexData)); uerr == nil {
				return reason, true
			}
			return "execution reverted", true
		}
	}
	if strings.Contains(err.Error(), "execution reverted") {
		return err.Error(), true
	}
	return "", false
}
