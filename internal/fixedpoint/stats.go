package fixedpoint

import (
	"slices"

	"github.com/holiman/uint256"
)

// SortAscending returns a sorted copy of xs. The input is not modified.
func SortAscending(xs []*uint256.Int) []*uint256.Int {
	sorted := make([]*uint256.Int, len(xs))
	copy(sorted, xs)
	slices.SortFunc(sorted, func(a, b *uint256.Int) int {
		return a.Cmp(b)
	})
	return sorted
}

// Percentile returns the nearest-rank-by-truncation percentile of an
// ascending slice: index = len*p/100, clamped to the last element.
// No interpolation is performed. Empty input returns zero.
func Percentile(sorted []*uint256.Int, p uint64) *uint256.Int {
	n := len(sorted)
	if n == 0 {
		return Zero()
	}
	return sorted[percentileIndex(n, p)].Clone()
}

// Median returns the middle element of an ascending slice, or the truncated
// mean of the two middle elements for even lengths. Empty input returns zero.
func Median(sorted []*uint256.Int) *uint256.Int {
	n := len(sorted)
	if n == 0 {
		return Zero()
	}
	if n%2 == 1 {
		return sorted[n/2].Clone()
	}

	// (a+b)/2 without overflow: a/2 + b/2 + (a%2 + b%2)/2
	a, b := sorted[n/2-1], sorted[n/2]
	two := uint256.NewInt(2)
	half := new(uint256.Int).Div(a, two)
	half.Add(half, new(uint256.Int).Div(b, two))
	rem := new(uint256.Int).Mod(a, two)
	rem.Add(rem, new(uint256.Int).Mod(b, two))
	return half.Add(half, rem.Rsh(rem, 1))
}

// Uint64Percentile is Percentile over plain integers.
func Uint64Percentile(sorted []uint64, p uint64) uint64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	return sorted[percentileIndex(n, p)]
}

// Uint64Median is Median over plain integers.
func Uint64Median(sorted []uint64) uint64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	a, b := sorted[n/2-1], sorted[n/2]
	return a/2 + b/2 + (a%2+b%2)/2
}

// SortUint64 returns a sorted copy of xs.
func SortUint64(xs []uint64) []uint64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return sorted
}

func percentileIndex(n int, p uint64) int {
	if p >= 100 {
		return n - 1
	}
	idx := int(uint64(n) * p / 100)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
