package deployapi

import (
	"context"
	"fmt"
	"strconv"
)

// Estimate is a deploy cost estimate. Live is false when the figures come
// from the built-in table.
type Estimate struct {
	ChainID       int64  `json:"chainId"`
	Network       string `json:"network"`
	Symbol        string `json:"symbol"`
	GasPrice      string `json:"gasPrice"`
	GasLimit      uint64 `json:"gasLimit"`
	EstimatedCost string `json:"estimatedCost"`
	CostDisplay   string `json:"costDisplay"`
	Live          bool   `json:"live"`
}

const (
	defaultEstimateChainID  = 97
	defaultEstimateGasLimit = 800_000
	defaultEstimateGasPrice = "20 gwei"
)

type fixedCost struct {
	cost    float64
	symbol  string
	display string
}

var fixedCosts = map[int64]fixedCost{
	1:     {0.02, "ETH", "~0.02 ETH ($30-60)"},
	56:    {0.003, "BNB", "~0.003 BNB ($1-2)"},
	97:    {0.003, "tBNB", "~0.003 tBNB (Testnet)"},
	137:   {0.01, "MATIC", "~0.01 MATIC ($0.01)"},
	43114: {0.01, "AVAX", "~0.01 AVAX ($0.30)"},
	250:   {0.1, "FTM", "~0.1 FTM ($0.10)"},
}

var fallbackCost = fixedCost{0.01, "ETH", "~0.01 ETH"}

// EstimateDeployCost estimates the native-currency cost of a deploy on
// chainID from the API's gas figures. Any failure yields the built-in
// figure for the chain; it never errors.
func (c *Client) EstimateDeployCost(ctx context.Context, chainID int64) Estimate {
	if chainID <= 0 {
		return DefaultEstimate(defaultEstimateChainID)
	}

	info, err := c.NetworkInfo(ctx, chainID)
	if err != nil {
		c.lggr.Debugw("Using built-in cost estimate", "chainId", chainID, "err", err)
		return DefaultEstimate(chainID)
	}
	if !info.GasPrice.Valid || !info.GasLimit.Valid || info.GasLimit.Value <= 0 || info.GasPrice.Value < 0 {
		c.lggr.Debugw("Network gas figures unusable, using built-in estimate", "chainId", chainID)
		return DefaultEstimate(chainID)
	}

	gasLimit := uint64(info.GasLimit.Value)
	// gwei × gas → wei (×1e9) → native (÷1e18)
	cost := info.GasPrice.Value * float64(gasLimit) / 1e9

	return Estimate{
		ChainID:       chainID,
		Network:       info.Name,
		Symbol:        info.Symbol,
		GasPrice:      strconv.FormatFloat(info.GasPrice.Value, 'f', -1, 64) + " gwei",
		GasLimit:      gasLimit,
		EstimatedCost: strconv.FormatFloat(cost, 'f', 6, 64),
		CostDisplay:   fmt.Sprintf("~%.4f %s", cost, info.Symbol),
		Live:          true,
	}
}

// DefaultEstimate returns the built-in estimate for chainID.
func DefaultEstimate(chainID int64) Estimate {
	fc, ok := fixedCosts[chainID]
	if !ok {
		fc = fallbackCost
	}
	return Estimate{
		ChainID:       chainID,
		Network:       "Unknown network",
		Symbol:        fc.symbol,
		GasPrice:      defaultEstimateGasPrice,
		GasLimit:      defaultEstimateGasLimit,
		EstimatedCost: strconv.FormatFloat(fc.cost, 'f', 6, 64),
		CostDisplay:   fc.display,
	}
}
