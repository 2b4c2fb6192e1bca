// Package app contains the historical trade analysis and parameter sweeps.
package app

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/analytics/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

const (
	// DefaultMaxSamples caps the trades accepted by one analysis.
	DefaultMaxSamples = 1000

	// Recommendation constants.
	minProfitFloorBps      = 50
	deadlineBufferSeconds  = 30
	slippagePercentile     = 95
	executionPercentile    = 99
	insufficientTradeCount = 10
)

// Analyzer computes statistics over historical trades. It holds no state
// between calls.
type Analyzer struct {
	maxSamples int
}

// NewAnalyzer creates an Analyzer. maxSamples <= 0 uses DefaultMaxSamples.
func NewAnalyzer(maxSamples int) *Analyzer {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Analyzer{maxSamples: maxSamples}
}

// MaxSamples returns the sample cap.
func (a *Analyzer) MaxSamples() int {
	return a.maxSamples
}

func (a *Analyzer) validate(trades []domain.TradeData) error {
	if len(trades) == 0 {
		return apperror.New(apperror.CodeInsufficientData,
			apperror.WithContext("no trades to analyze"))
	}
	if len(trades) > a.maxSamples {
		return apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("%d trades exceeds the sample cap of %d", len(trades), a.maxSamples))
	}
	return nil
}

func profitOf(t domain.TradeData) *uint256.Int {
	if t.Profit == nil {
		return fixedpoint.Zero()
	}
	return t.Profit
}

// AnalyzeHistoricalTrades returns descriptive statistics of trade profits.
func (a *Analyzer) AnalyzeHistoricalTrades(trades []domain.TradeData) (domain.StatisticalAnalysis, error) {
	if err := a.validate(trades); err != nil {
		return domain.StatisticalAnalysis{}, err
	}

	n := uint64(len(trades))
	sum := fixedpoint.Zero()
	var gasSum, successes uint64
	minProfit := profitOf(trades[0])
	maxProfit := profitOf(trades[0])
	profits := make([]*uint256.Int, len(trades))

	var err error
	for i, t := range trades {
		p := profitOf(t)
		profits[i] = p
		if sum, err = fixedpoint.Add(sum, p); err != nil {
			return domain.StatisticalAnalysis{}, err
		}
		gasSum += t.GasUsed
		if t.IsSuccess() {
			successes++
		}
		minProfit = fixedpoint.Min(minProfit, p)
		maxProfit = fixedpoint.Max(maxProfit, p)
	}

	count := uint256.NewInt(n)
	mean := fixedpoint.Div(sum, count)

	stddev, err := populationStdDev(profits, mean, count)
	if err != nil {
		return domain.StatisticalAnalysis{}, err
	}

	return domain.StatisticalAnalysis{
		MeanProfit:     mean,
		MedianProfit:   fixedpoint.Median(fixedpoint.SortAscending(profits)),
		StdDeviation:   stddev,
		MinProfit:      minProfit.Clone(),
		MaxProfit:      maxProfit.Clone(),
		SuccessRateBps: successes * fixedpoint.BPS / n,
		AverageGasUsed: gasSum / n,
		TotalTrades:    n,
	}, nil
}

// populationStdDev descales each squared deviation by PRECISION before
// summing, divides by N, then takes the integer root of variance*PRECISION.
func populationStdDev(profits []*uint256.Int, mean, count *uint256.Int) (*uint256.Int, error) {
	precision := fixedpoint.Precision()
	sumSq := fixedpoint.Zero()

	for _, p := range profits {
		var diff *uint256.Int
		if p.Lt(mean) {
			diff = new(uint256.Int).Sub(mean, p)
		} else {
			diff = new(uint256.Int).Sub(p, mean)
		}
		sq, err := fixedpoint.MulDiv(diff, diff, precision)
		if err != nil {
			return nil, err
		}
		if sumSq, err = fixedpoint.Add(sumSq, sq); err != nil {
			return nil, err
		}
	}

	variance := fixedpoint.Div(sumSq, count)
	scaled, err := fixedpoint.Mul(variance, precision)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sqrt(scaled), nil
}

// GenerateParameterRecommendations derives cost parameters from analysis and
// the trades it was computed from.
func (a *Analyzer) GenerateParameterRecommendations(analysis domain.StatisticalAnalysis, trades []domain.TradeData) (domain.ParameterRecommendation, error) {
	if err := a.validate(trades); err != nil {
		return domain.ParameterRecommendation{}, err
	}
	if analysis.MeanProfit == nil || analysis.StdDeviation == nil {
		return domain.ParameterRecommendation{}, apperror.Validation(apperror.CodeInvalidInput,
			"analysis is missing mean or standard deviation")
	}

	conservative := fixedpoint.SaturatingSub(analysis.MeanProfit, analysis.StdDeviation)
	profitBps, err := fixedpoint.MulDiv(conservative, fixedpoint.BPSScale(), fixedpoint.Precision())
	if err != nil {
		return domain.ParameterRecommendation{}, err
	}
	minProfitBps := uint64(minProfitFloorBps)
	if !profitBps.LtUint64(minProfitFloorBps) {
		if !profitBps.IsUint64() {
			return domain.ParameterRecommendation{}, apperror.New(apperror.CodeArithmeticOverflow,
				apperror.WithContext("min profit bps exceeds 64 bits"))
		}
		minProfitBps = profitBps.Uint64()
	}

	slippages := make([]uint64, len(trades))
	execTimes := make([]uint64, len(trades))
	for i, t := range trades {
		slippages[i] = t.SlippageBps
		execTimes[i] = t.ExecutionTimeSeconds
	}

	confidence, err := confidenceBps(analysis.MeanProfit, analysis.StdDeviation)
	if err != nil {
		return domain.ParameterRecommendation{}, err
	}

	return domain.ParameterRecommendation{
		MinProfitBps:     minProfitBps,
		MaxSlippageBps:   fixedpoint.Uint64Percentile(fixedpoint.SortUint64(slippages), slippagePercentile),
		DeadlineSeconds:  fixedpoint.Uint64Percentile(fixedpoint.SortUint64(execTimes), executionPercentile) + deadlineBufferSeconds,
		GasUnitsEstimate: analysis.AverageGasUsed * 3 / 2,
		ConfidenceBps:    confidence,
		Reasoning:        reasoning(analysis),
	}, nil
}

// confidenceBps maps the coefficient of variation to [0, BPS]: no spread is
// full confidence, CV >= 1 is none.
func confidenceBps(mean, stddev *uint256.Int) (uint64, error) {
	if stddev.IsZero() {
		return fixedpoint.BPS, nil
	}
	if mean.IsZero() {
		return 0, nil
	}

	precision := fixedpoint.Precision()
	cv, err := fixedpoint.MulDiv(stddev, precision, mean)
	if err != nil {
		return 0, err
	}
	if !cv.Lt(precision) {
		return 0, nil
	}

	denom := new(uint256.Int).Add(precision, cv)
	scaled, err := fixedpoint.MulDiv(precision, fixedpoint.BPSScale(), denom)
	if err != nil {
		return 0, err
	}
	return scaled.Uint64(), nil
}

func reasoning(analysis domain.StatisticalAnalysis) string {
	rate := fmt.Sprintf("%d.%02d%%", analysis.SuccessRateBps/100, analysis.SuccessRateBps%100)
	switch {
	case analysis.TotalTrades < insufficientTradeCount:
		return fmt.Sprintf("Insufficient data: %d trades; collect at least %d before relying on these parameters",
			analysis.TotalTrades, insufficientTradeCount)
	case analysis.SuccessRateBps >= 9000:
		return fmt.Sprintf("High success rate (%s over %d trades); parameters can be tightened", rate, analysis.TotalTrades)
	case analysis.SuccessRateBps >= 7000:
		return fmt.Sprintf("Good success rate (%s over %d trades); parameters are balanced", rate, analysis.TotalTrades)
	case analysis.SuccessRateBps >= 5000:
		return fmt.Sprintf("Moderate success rate (%s over %d trades); consider a higher profit threshold", rate, analysis.TotalTrades)
	default:
		return fmt.Sprintf("Low success rate (%s over %d trades); review routes and raise thresholds", rate, analysis.TotalTrades)
	}
}

// AnalyzeGasEfficiency summarizes gas consumption.
func (a *Analyzer) AnalyzeGasEfficiency(trades []domain.TradeData) (domain.GasEfficiency, error) {
	if err := a.validate(trades); err != nil {
		return domain.GasEfficiency{}, err
	}

	n := uint64(len(trades))
	totalProfit := fixedpoint.Zero()
	var totalGas uint64
	minGas, maxGas := trades[0].GasUsed, trades[0].GasUsed

	var err error
	for _, t := range trades {
		totalGas += t.GasUsed
		minGas = min(minGas, t.GasUsed)
		maxGas = max(maxGas, t.GasUsed)
		if totalProfit, err = fixedpoint.Add(totalProfit, profitOf(t)); err != nil {
			return domain.GasEfficiency{}, err
		}
	}

	avg := totalGas / n
	var above uint64
	for _, t := range trades {
		if t.GasUsed > avg {
			above++
		}
	}

	return domain.GasEfficiency{
		AverageGasUsed:  avg,
		MinGasUsed:      minGas,
		MaxGasUsed:      maxGas,
		ProfitPerGas:    fixedpoint.Div(totalProfit, uint256.NewInt(totalGas)),
		AboveAverageBps: above * fixedpoint.BPS / n,
		TotalTrades:     n,
	}, nil
}
