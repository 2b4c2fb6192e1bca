package domain

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestGasEstimate(t *testing.T) {
	price := NewGasPrice(GweiToWei(50))
	est := NewGasEstimate(500_000, price)

	if got := est.TotalWei.Dec(); got != "25000000000000000" {
		t.Errorf("TotalWei = %s, want 25000000000000000", got)
	}
	if got := est.TotalGwei(); got != 25_000_000 {
		t.Errorf("TotalGwei = %v, want 25000000", got)
	}
	if got := price.Gwei(); got != 50 {
		t.Errorf("Gwei = %v, want 50", got)
	}
}

func TestGasPrice_FractionalGwei(t *testing.T) {
	price := NewGasPrice(uint256.NewInt(1_500_000_000))
	if got := price.Gwei(); got != 1.5 {
		t.Errorf("Gwei = %v, want 1.5", got)
	}
}
