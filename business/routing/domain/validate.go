package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

// ValidatePath checks the structural path rules in order: length, circularity,
// non-zero addresses, then interior duplicates. Token support is checked by
// the registry against the settlement backend between the last two steps.
// A two-token path [A, A] is structurally valid but has no intermediate
// token, so the evaluator always reports it as QUOTE_UNAVAILABLE.
func ValidatePath(path []common.Address, supported func(common.Address) bool) error {
	if len(path) < MinPathLength || len(path) > MaxPathLength {
		return apperror.Validation(apperror.CodeInvalidPathLength,
			fmt.Sprintf("got %d tokens, want %d-%d", len(path), MinPathLength, MaxPathLength))
	}
	if path[0] != path[len(path)-1] {
		return apperror.Validation(apperror.CodeCircularPathRequired,
			fmt.Sprintf("path starts at %s and ends at %s", path[0].Hex(), path[len(path)-1].Hex()))
	}
	for i, token := range path {
		if token == (common.Address{}) {
			return apperror.Validation(apperror.CodeInvalidTokenAddress,
				fmt.Sprintf("path[%d] is the zero address", i))
		}
	}
	if supported != nil {
		for i, token := range path {
			if !supported(token) {
				return apperror.Validation(apperror.CodeUnsupportedToken,
					fmt.Sprintf("path[%d] %s", i, token.Hex()))
			}
		}
	}

	// The closing token equals the first and is exempt.
	interior := path[:len(path)-1]
	seen := make(map[common.Address]int, len(interior))
	for i, token := range interior {
		if j, dup := seen[token]; dup {
			return apperror.Validation(apperror.CodeDuplicateTokenInPath,
				fmt.Sprintf("%s at path[%d] and path[%d]", token.Hex(), j, i))
		}
		seen[token] = i
	}
	return nil
}
