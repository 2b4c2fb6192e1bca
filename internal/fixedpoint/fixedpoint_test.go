package fixedpoint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

func u(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func TestBps(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		bps    uint64
		want   string
	}{
		{"flash_loan_premium_9bps", "10000000000000000000", 9, "9000000000000000"},
		{"builder_tip_10bps", "10000000000000000000", 10, "10000000000000000"},
		{"safety_buffer_50bps", "10000000000000000000", 50, "50000000000000000"},
		{"truncates_toward_zero", "9999", 1, "0"},
		{"full_100_percent", "12345", 10_000, "12345"},
		{"zero_rate", "12345", 0, "0"},
		{"zero_amount", "0", 500, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bps(u(tt.amount), tt.bps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Dec() != tt.want {
				t.Errorf("Bps(%s, %d) = %s, want %s", tt.amount, tt.bps, got.Dec(), tt.want)
			}
		})
	}
}

func TestBps_NilAmount(t *testing.T) {
	if _, err := Bps(nil, 10); apperror.GetCode(err) != apperror.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSaturatingSub(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"a_greater", "10", "3", "7"},
		{"equal", "10", "10", "0"},
		{"b_greater_floors_at_zero", "3", "10", "0"},
		{"zero_minus_zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SaturatingSub(u(tt.a), u(tt.b)); got.Dec() != tt.want {
				t.Errorf("SaturatingSub(%s, %s) = %s, want %s", tt.a, tt.b, got.Dec(), tt.want)
			}
		})
	}
}

func TestDeviationBps(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 string
		want   uint64
	}{
		{"identical", "2000", "2000", 0},
		{"one_percent_low", "990", "1000", 100},
		{"symmetric", "1000", "990", 100},
		{"truncates", "1000", "997", 30},
		{"double", "1", "2", 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeviationBps(u(tt.p1), u(tt.p2))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeviationBps(%s, %s) = %d, want %d", tt.p1, tt.p2, got, tt.want)
			}
		})
	}
}

func TestDeviationBps_ZeroPrice(t *testing.T) {
	for _, pair := range [][2]string{{"0", "100"}, {"100", "0"}, {"0", "0"}} {
		_, err := DeviationBps(u(pair[0]), u(pair[1]))
		if apperror.GetCode(err) != apperror.CodeInvalidPrice {
			t.Errorf("DeviationBps(%s, %s): expected INVALID_PRICE, got %v", pair[0], pair[1], err)
		}
	}
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		x, want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"2", "1"},
		{"3", "1"},
		{"4", "2"},
		{"15", "3"},
		{"16", "4"},
		{"1000000000000000000", "1000000000"},
		{"100000000000000000000000000000000", "10000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.x, func(t *testing.T) {
			if got := Sqrt(u(tt.x)); got.Dec() != tt.want {
				t.Errorf("Sqrt(%s) = %s, want %s", tt.x, got.Dec(), tt.want)
			}
		})
	}
}

func TestSqrt_MaxUint256(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	got := Sqrt(max)
	// floor(sqrt(2^256-1)) = 2^128-1
	want := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	if !got.Eq(want) {
		t.Errorf("Sqrt(max) = %s, want %s", got.Dec(), want.Dec())
	}
}

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(u("10000000000000000000"), u("1080000000000000000"), Precision())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Dec() != "10800000000000000000" {
		t.Errorf("MulDiv = %s, want 10800000000000000000", got.Dec())
	}

	if _, err := MulDiv(u("1"), u("1"), Zero()); apperror.GetCode(err) != apperror.CodeDivisionByZero {
		t.Errorf("expected DIVISION_BY_ZERO, got %v", err)
	}

	max := new(uint256.Int).SetAllOne()
	if _, err := MulDiv(max, u("2"), u("1")); apperror.GetCode(err) != apperror.CodeArithmeticOverflow {
		t.Errorf("expected ARITHMETIC_OVERFLOW, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1", "1000000000000000000"},
		{"0.009", "9000000000000000"},
		{"10.8", "10800000000000000000"},
		{"0.0000000000000000001", "0"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Fatalf("ParseAmount(%s): %v", tt.in, err)
		}
		if got.Dec() != tt.want {
			t.Errorf("ParseAmount(%s) = %s, want %s", tt.in, got.Dec(), tt.want)
		}
	}

	if _, err := ParseAmount("-1"); apperror.GetCode(err) != apperror.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for negative amount, got %v", err)
	}
	if _, err := ParseAmount("abc"); apperror.GetCode(err) != apperror.CodeInvalidFormat {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestToDecimal(t *testing.T) {
	got := ToDecimal(u("706000000000000000"), Decimals)
	if !got.Equal(decimal.RequireFromString("0.706")) {
		t.Errorf("ToDecimal = %s, want 0.706", got)
	}
}
