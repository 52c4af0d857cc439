package deploy

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// MaxDecimals is the largest accepted token precision.
const MaxDecimals = 18

// Validate checks a draft before any network call.
func Validate(d *state.TokenDraft) error {
	if d == nil {
		return &ValidationError{Field: "token", Reason: "no token data"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Symbol) == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if d.Decimals > MaxDecimals {
		return &ValidationError{Field: "decimals", Reason: "must be between 0 and 18"}
	}
	if _, err := ScaledSupply(d.TotalSupply, d.Decimals); err != nil {
		return err
	}
	if !common.IsHexAddress(d.Owner) {
		return &ValidationError{Field: "owner", Reason: "not a hex address"}
	}
	return nil
}

// ScaledSupply converts a whole-token decimal supply into base units
// (supply × 10^decimals). The result must be positive and fit in 256 bits.
func ScaledSupply(supply string, decimals uint8) (*uint256.Int, error) {
	supply = strings.TrimSpace(supply)
	if supply == "" {
		return nil, &ValidationError{Field: "totalSupply", Reason: "must not be empty"}
	}
	n, ok := new(big.Int).SetString(supply, 10)
	if !ok {
		return nil, &ValidationError{Field: "totalSupply", Reason: "not a decimal integer"}
	}
	if n.Sign() <= 0 {
		return nil, &ValidationError{Field: "totalSupply", Reason: "must be positive"}
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	n.Mul(n, scale)

	out, overflow := uint256.FromBig(n)
	if overflow {
		return nil, &ValidationError{Field: "totalSupply", Reason: "exceeds 256 bits after scaling"}
	}
	return out, nil
}
