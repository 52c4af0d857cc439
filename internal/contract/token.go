// Package contract reads deployed ERC-20 tokens back from the chain.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenforge/internal/deploy"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// ErrNoContract is returned when the address holds no code.
var ErrNoContract = errors.New("no contract code at address")

var erc20 = mustParse(erc20ABIJSON)

func mustParse(js string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(js))
	if err != nil {
		panic(fmt.Sprintf("contract: invalid built-in ABI: %v", err))
	}
	return parsed
}

// Caller is the read side of a JSON-RPC node. *chain.EVMClient satisfies it.
type Caller interface {
	Call(ctx context.Context, to string, data []byte) ([]byte, error)
	GetCode(ctx context.Context, address string) ([]byte, error)
}

// TokenInfo is the on-chain metadata of an ERC-20 token.
type TokenInfo struct {
	Address     string
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Owner       string // empty when the token is not Ownable
}

// Reader calls ERC-20 view functions.
type Reader struct {
	client Caller
}

// NewReader returns a Reader using client.
func NewReader(client Caller) *Reader {
	return &Reader{client: client}
}

// TokenInfo reads name, symbol, decimals, totalSupply and, if present, owner.
func (r *Reader) TokenInfo(ctx context.Context, address string) (*TokenInfo, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid token address %q", address)
	}
	code, err := r.client.GetCode(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, address)
	}

	info := &TokenInfo{Address: common.HexToAddress(address).Hex()}
	if info.Name, err = callAs[string](ctx, r, address, "name"); err != nil {
		return nil, err
	}
	if info.Symbol, err = callAs[string](ctx, r, address, "symbol"); err != nil {
		return nil, err
	}
	if info.Decimals, err = callAs[uint8](ctx, r, address, "decimals"); err != nil {
		return nil, err
	}
	if info.TotalSupply, err = callAs[*big.Int](ctx, r, address, "totalSupply"); err != nil {
		return nil, err
	}
	if owner, err := callAs[common.Address](ctx, r, address, "owner"); err == nil {
		info.Owner = owner.Hex()
	}
	return info, nil
}

// BalanceOf returns holder's balance of token in base units.
func (r *Reader) BalanceOf(ctx context.Context, token, holder string) (*big.Int, error) {
	if !common.IsHexAddress(holder) {
		return nil, fmt.Errorf("invalid holder address %q", holder)
	}
	return callAs[*big.Int](ctx, r, token, "balanceOf", common.HexToAddress(holder))
}

func callAs[T any](ctx context.Context, r *Reader, to, method string, args ...any) (T, error) {
	var zero T
	data, err := erc20.Pack(method, args...)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	raw, err := r.client.Call(ctx, to, data)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	if len(raw) == 0 {
		return zero, fmt.Errorf("%s: empty result", method)
	}
	out, err := erc20.Unpack(method, raw)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

// Mismatch is a field where the chain disagrees with the draft.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

// Compare checks the token against the draft it was deployed from. Supply is
// compared in base units. Owner is only compared when the token reports one.
func (t *TokenInfo) Compare(d state.TokenDraft) ([]Mismatch, error) {
	var out []Mismatch
	add := func(field, want, got string) {
		if want != got {
			out = append(out, Mismatch{Field: field, Want: want, Got: got})
		}
	}

	add("name", strings.TrimSpace(d.Name), t.Name)
	add("symbol", strings.TrimSpace(d.Symbol), t.Symbol)
	add("decimals", strconv.Itoa(int(d.Decimals)), strconv.Itoa(int(t.Decimals)))

	supply, err := deploy.ScaledSupply(d.TotalSupply, d.Decimals)
	if err != nil {
		return nil, err
	}
	got := "0"
	if t.TotalSupply != nil {
		got = t.TotalSupply.String()
	}
	add("totalSupply", supply.Dec(), got)

	if t.Owner != "" && common.IsHexAddress(d.Owner) {
		add("owner", common.HexToAddress(d.Owner).Hex(), t.Owner)
	}
	return out, nil
}
