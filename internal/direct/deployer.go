// Package direct deploys the token contract from a local signing wallet,
// without the hosted deploy API.
package direct

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
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// ErrWrongChain is returned when the wallet is connected to another chain.
var ErrWrongChain = errors.New("wallet is on the wrong chain")

// Deployer implements deploy.DirectDeployer.
type Deployer struct {
	provider Provider
	artifact *Artifact
	store    *state.Store
	lggr     logging.Logger
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithStore records the connected wallet in the store's wallet section.
func WithStore(s *state.Store) Option {
	return func(d *Deployer) { d.store = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Deployer) { d.lggr = l }
}

// NewDeployer creates a deployer for artifact.
func NewDeployer(p Provider, artifact *Artifact, opts ...Option) *Deployer {
	d := &Deployer{provider: p, artifact: artifact, lggr: logging.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	d.lggr = d.lggr.Named("direct")
	return d
}

// DeployDirect connects the wallet, checks its chain, and deploys the draft.
func (d *Deployer) DeployDirect(ctx context.Context, req deploy.DirectRequest) (*deploy.DirectResult, error) {
	if d.artifact == nil {
		return nil, errors.New("no token artifact configured for direct deploy")
	}

	from, err := d.provider.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting wallet: %w", err)
	}
	chainID, err := d.provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading wallet chain: %w", err)
	}
	d.recordWallet(from, chainID)
	if chainID != req.ChainID {
		return nil, fmt.Errorf("%w: connected to %d, want %d", ErrWrongChain, chainID, req.ChainID)
	}

	args, err := ConstructorArgs(d.artifact.ABI, req.Token)
	if err != nil {
		return nil, err
	}

	d.lggr.Infow("Deploying token directly", "chainId", chainID, "from", from, "contract", d.artifact.Name)
	dep, err := d.provider.DeployContract(ctx, d.artifact.Bytecode, d.artifact.ABI, args...)
	if err != nil {
		return nil, err
	}
	return &deploy.DirectResult{
		Address:     dep.Address,
		TxHash:      dep.TxHash,
		GasUsed:     strconv.FormatUint(dep.GasUsed, 10),
		BlockNumber: strconv.FormatUint(dep.BlockNumber, 10),
	}, nil
}

func (d *Deployer) recordWallet(addr string, chainID int64) {
	if d.store == nil {
		return
	}
	prev := d.store.Snapshot().Wallet
	ws := state.WalletState{Connected: true, Address: addr, Network: prev.Network}
	if ws.Network == nil || ws.Network.ChainID != chainID {
		ws.Network = &state.NetworkInfo{ChainID: chainID}
	}
	if err := d.store.Set(state.PathWallet, ws); err != nil {
		d.lggr.Warnw("Failed to record wallet", "err", err)
	}
}

// draft field a constructor input is fed from.
type draftField int

const (
	fieldName draftField = iota
	fieldSymbol
	fieldDecimals
	fieldSupply
	fieldOwner
)

// positional order used for unnamed inputs.
var positional = []draftField{fieldName, fieldSymbol, fieldDecimals, fieldSupply, fieldOwner}

var inputNames = map[string]draftField{
	"name":          fieldName,
	"tokenname":     fieldName,
	"symbol":        fieldSymbol,
	"tokensymbol":   fieldSymbol,
	"decimals":      fieldDecimals,
	"tokendecimals": fieldDecimals,
	"totalsupply":   fieldSupply,
	"initialsupply": fieldSupply,
	"supply":        fieldSupply,
	"owner":         fieldOwner,
	"initialowner":  fieldOwner,
	"owneraddress":  fieldOwner,
}

// ConstructorArgs maps the draft onto the artifact's constructor inputs by
// parameter name. Supply is scaled by decimals.
func ConstructorArgs(contractABI abi.ABI, t state.TokenDraft) ([]any, error) {
	inputs := contractABI.Constructor.Inputs
	args := make([]any, 0, len(inputs))
	for i, in := range inputs {
		f, err := fieldFor(in.Name, i)
		if err != nil {
			return nil, err
		}
		v, err := convert(f, in, t)
		if err != nil {
			return nil, fmt.Errorf("constructor input %q: %w", in.Name, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func fieldFor(name string, index int) (draftField, error) {
	if name == "" {
		if index < len(positional) {
			return positional[index], nil
		}
		return 0, fmt.Errorf("constructor input %d has no name and no default", index)
	}
	key := strings.ToLower(strings.Trim(name, "_"))
	f, ok := inputNames[key]
	if !ok {
		return 0, fmt.Errorf("constructor input %q has no matching token field", name)
	}
	return f, nil
}

func convert(f draftField, in abi.Argument, t state.TokenDraft) (any, error) {
	switch f {
	case fieldName, fieldSymbol:
		if in.Type.T != abi.StringTy {
			return nil, fmt.Errorf("want string, artifact has %s", in.Type)
		}
		if f == fieldName {
			return strings.TrimSpace(t.Name), nil
		}
		return strings.TrimSpace(t.Symbol), nil

	case fieldDecimals:
		return uintArg(in.Type, new(big.Int).SetUint64(uint64(t.Decimals)))

	case fieldSupply:
		supply, err := deploy.ScaledSupply(t.TotalSupply, t.Decimals)
		if err != nil {
			return nil, err
		}
		return uintArg(in.Type, supply.ToBig())

	case fieldOwner:
		if in.Type.T != abi.AddressTy {
			return nil, fmt.Errorf("want address, artifact has %s", in.Type)
		}
		if !common.IsHexAddress(t.Owner) {
			return nil, fmt.Errorf("owner %q is not a hex address", t.Owner)
		}
		return common.HexToAddress(t.Owner), nil
	}
	return nil, fmt.Errorf("unhandled field %d", f)
}

// uintArg returns n as the Go type the ABI packer expects for typ.
func uintArg(typ abi.Type, n *big.Int) (any, error) {
	if typ.T != abi.UintTy {
		return nil, fmt.Errorf("want unsigned integer, artifact has %s", typ)
	}
	if n.BitLen() > typ.Size {
		return nil, fmt.Errorf("value %s does not fit %s", n, typ)
	}
	switch typ.Size {
	case 8:
		return uint8(n.Uint64()), nil
	case 16:
		return uint16(n.Uint64()), nil
	case 32:
		return uint32(n.Uint64()), nil
	case 64:
		return n.Uint64(), nil
	}
	return n, nil
}
