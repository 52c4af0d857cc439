package direct

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
	"github.com/Mohsinsiddi/tokenforge/internal/config"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/wallet"
)

// Provider is the wallet that signs and sends the deployment.
type Provider interface {
	// Connect returns the address that will deploy.
	Connect(ctx context.Context) (string, error)
	// ChainID returns the chain the wallet is connected to.
	ChainID(ctx context.Context) (int64, error)
	// DeployContract deploys bytecode with ABI-packed constructor args and
	// waits for the receipt.
	DeployContract(ctx context.Context, bytecode []byte, contractABI abi.ABI, args ...any) (*Deployment, error)
}

// Deployment is a mined contract creation.
type Deployment struct {
	Address     string
	TxHash      string
	GasUsed     uint64
	BlockNumber uint64
}

// LocalWallet signs with a stored wallet and sends through a JSON-RPC node.
type LocalWallet struct {
	signer  *wallet.Signer
	client  *chain.EVMClient
	timeout time.Duration
	lggr    logging.Logger
}

// LocalOption configures a LocalWallet.
type LocalOption func(*LocalWallet)

// WithReceiptTimeout bounds the wait for the deployment receipt. Default 5 min.
func WithReceiptTimeout(d time.Duration) LocalOption {
	return func(w *LocalWallet) { w.timeout = d }
}

// WithLocalLogger sets the logger.
func WithLocalLogger(l logging.Logger) LocalOption {
	return func(w *LocalWallet) { w.lggr = l }
}

// NewLocalWallet creates a provider from a signer and an RPC client.
func NewLocalWallet(signer *wallet.Signer, client *chain.EVMClient, opts ...LocalOption) *LocalWallet {
	w := &LocalWallet{
		signer:  signer,
		client:  client,
		timeout: config.TxDeployTimeout,
		lggr:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lggr = w.lggr.Named("direct")
	return w
}

func (w *LocalWallet) Connect(_ context.Context) (string, error) {
	if w.signer == nil {
		return "", errors.New("no signing wallet configured")
	}
	addr := w.signer.Address()
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("wallet %q has invalid address %q", w.signer.Name(), addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

func (w *LocalWallet) ChainID(ctx context.Context) (int64, error) {
	return w.client.ChainID(ctx)
}

func (w *LocalWallet) DeployContract(ctx context.Context, bytecode []byte, contractABI abi.ABI, args ...any) (*Deployment, error) {
	from, err := w.Connect(ctx)
	if err != nil {
		return nil, err
	}

	packed, err := contractABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encoding constructor args: %w", err)
	}
	data := make([]byte, 0, len(bytecode)+len(packed))
	data = append(data, bytecode...)
	data = append(data, packed...)

	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	gasPrice, err := w.client.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := w.client.GetNonce(ctx, from)
	if err != nil {
		return nil, err
	}
	gas, err := w.client.EstimateGas(ctx, chain.CallMsg{From: from, Data: data})
	if err != nil {
		w.lggr.Debugw("Gas estimation failed, using fixed limit", "err", err, "gas", config.GasLimitTokenDeploy)
		gas = config.GasLimitTokenDeploy
	}

	id := big.NewInt(chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   id,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        nil, // contract creation
		Value:     big.NewInt(0),
		Data:      data,
	})

	raw, err := w.signer.SignTx(tx, id)
	if err != nil {
		return nil, err
	}
	hash, err := w.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, err
	}
	w.lggr.Infow("Deployment broadcast", "tx", hash, "from", from, "nonce", nonce, "gas", gas)

	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	receipt, err := w.client.WaitForReceipt(waitCtx, hash)
	if err != nil {
		return nil, fmt.Errorf("deploy tx %s: %w", hash, err)
	}

	addr := receipt.ContractAddress
	if addr == "" {
		addr = crypto.CreateAddress(common.HexToAddress(from), nonce).Hex()
	}
	return &Deployment{
		Address:     addr,
		TxHash:      hash,
		GasUsed:     receipt.GasUsed,
		BlockNumber: receipt.BlockNumber,
	}, nil
}
