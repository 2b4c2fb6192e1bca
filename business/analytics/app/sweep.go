package app

import (
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// SensitivityAnalysis prices every (gas price, premium) pair against a fixed
// gross profit. Results are row-major: gas prices outer, premiums inner.
func SensitivityAnalysis(in domain.SensitivityInput) ([]domain.SensitivityResult, error) {
	switch {
	case len(in.GasPricesWei) == 0:
		return nil, apperror.Validation(apperror.CodeInvalidInput, "gas price grid is empty")
	case len(in.PremiumsBps) == 0:
		return nil, apperror.Validation(apperror.CodeInvalidInput, "premium grid is empty")
	case in.BaseProfit == nil || in.BorrowAmount == nil:
		return nil, apperror.Validation(apperror.CodeInvalidInput, "base profit and borrow amount are required")
	}

	results := make([]domain.SensitivityResult, 0, len(in.GasPricesWei)*len(in.PremiumsBps))
	for _, gas := range in.GasPricesWei {
		for _, premium := range in.PremiumsBps {
			results = append(results, sensitivityCell(in, gas, premium))
		}
	}
	return results, nil
}

func sensitivityCell(in domain.SensitivityInput, gasPrice *uint256.Int, premiumBps uint64) domain.SensitivityResult {
	cell := domain.SensitivityResult{
		GasPriceWei: gasPrice,
		PremiumBps:  premiumBps,
		TotalCosts:  fixedpoint.Zero(),
		NetProfit:   fixedpoint.Zero(),
	}
	if gasPrice == nil {
		gasPrice = fixedpoint.Zero()
	}

	costs, err := sweepCosts(in.BorrowAmount, gasPrice, premiumBps, in.GasUnitsEstimate, in.BuilderTipBps, in.SafetyBufferBps)
	if err != nil {
		cell.Err = err
		return cell
	}

	cell.TotalCosts = costs
	cell.NetProfit = fixedpoint.SaturatingSub(in.BaseProfit, costs)
	cell.IsProfitable = !cell.NetProfit.IsZero()
	return cell
}

func sweepCosts(borrow, gasPrice *uint256.Int, premiumBps, gasUnits, tipBps, bufferBps uint64) (*uint256.Int, error) {
	premium, err := fixedpoint.Bps(borrow, premiumBps)
	if err != nil {
		return nil, err
	}
	gas, err := fixedpoint.Mul(gasPrice, uint256.NewInt(gasUnits))
	if err != nil {
		return nil, err
	}
	tip, err := fixedpoint.Bps(borrow, tipBps)
	if err != nil {
		return nil, err
	}
	buffer, err := fixedpoint.Bps(borrow, bufferBps)
	if err != nil {
		return nil, err
	}

	total := premium
	for _, term := range []*uint256.Int{gas, tip, buffer} {
		if total, err = fixedpoint.Add(total, term); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// BacktestParameters replays trades under every (minProfitBps,
// maxSlippageBps) pair, min profit outer. ROI divides by the full trade
// count so cells that admit more of the sample rank higher.
func BacktestParameters(trades []domain.TradeData, minProfitBpsGrid, maxSlippageBpsGrid []uint64) ([]domain.BacktestResult, error) {
	switch {
	case len(trades) == 0:
		return nil, apperror.New(apperror.CodeInsufficientData,
			apperror.WithContext("no trades to backtest"))
	case len(minProfitBpsGrid) == 0:
		return nil, apperror.Validation(apperror.CodeInvalidInput, "min profit grid is empty")
	case len(maxSlippageBpsGrid) == 0:
		return nil, apperror.Validation(apperror.CodeInvalidInput, "max slippage grid is empty")
	}

	// A trade whose bps overflows cannot satisfy any threshold check
	// reliably and is left out of every cell.
	profitBps := make([]*uint256.Int, len(trades))
	for i, t := range trades {
		bps, err := fixedpoint.MulDiv(profitOf(t), fixedpoint.BPSScale(), fixedpoint.Precision())
		if err == nil {
			profitBps[i] = bps
		}
	}

	count := uint256.NewInt(uint64(len(trades)))
	results := make([]domain.BacktestResult, 0, len(minProfitBpsGrid)*len(maxSlippageBpsGrid))
	for _, minBps := range minProfitBpsGrid {
		for _, maxSlip := range maxSlippageBpsGrid {
			cell := domain.BacktestResult{
				MinProfitBps:   minBps,
				MaxSlippageBps: maxSlip,
				TotalProfit:    fixedpoint.Zero(),
				ROI:            fixedpoint.Zero(),
			}

			var err error
			for i, t := range trades {
				if profitBps[i] == nil || profitBps[i].LtUint64(minBps) || t.SlippageBps > maxSlip {
					continue
				}
				next, addErr := fixedpoint.Add(cell.TotalProfit, profitOf(t))
				if addErr != nil {
					err = addErr
					break
				}
				cell.TotalProfit = next
				cell.SuccessfulTrades++
			}

			if err != nil {
				cell.TotalProfit = fixedpoint.Zero()
				cell.SuccessfulTrades = 0
			} else if roi, mulErr := fixedpoint.MulDiv(cell.TotalProfit, fixedpoint.BPSScale(), count); mulErr == nil {
				cell.ROI = roi
			}
			results = append(results, cell)
		}
	}
	return results, nil
}

// BestBacktest returns the index of the highest-ROI cell; ties keep the
// earliest. It returns -1 for no results.
func BestBacktest(results []domain.BacktestResult) int {
	best := -1
	for i, r := range results {
		if r.ROI == nil {
			continue
		}
		if best < 0 || r.ROI.Gt(results[best].ROI) {
			best = i
		}
	}
	return best
}
