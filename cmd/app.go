package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
	"github.com/Mohsinsiddi/tokenforge/internal/config"
	"github.com/Mohsinsiddi/tokenforge/internal/deploy"
	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/direct"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/price"
	"github.com/Mohsinsiddi/tokenforge/internal/rpc"
	"github.com/Mohsinsiddi/tokenforge/internal/solidity"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
	"github.com/Mohsinsiddi/tokenforge/internal/wallet"
)

// app is the application context shared by every command. The root command
// builds it once per invocation.
type app struct {
	cfgDir   string
	logLevel string

	cfg      *config.Config
	lggr     logging.Logger
	store    *state.Store
	client   *deployapi.Client
	registry *chain.Registry
	metrics  *deploy.Metrics

	// keys overrides the OS keychain. Tests set it.
	keys wallet.KeystoreBackend
	// clientOpts are appended to the deploy client options. Tests set them.
	clientOpts []deployapi.Option
	// priceOpts configure the fiat price fetcher. Tests set them.
	priceOpts []price.Option
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := a.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	lggr, err := logging.New(level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.lggr = lggr
	a.store = state.New(state.WithStorage(state.NewFileStorage(cfg.Dir())), state.WithLogger(lggr))
	a.registry = chain.NewRegistry()
	a.metrics = deploy.NewMetrics()

	opts := []deployapi.Option{deployapi.WithTimeout(cfg.Timeout()), deployapi.WithLogger(lggr)}
	a.client = deployapi.NewClient(cfg.APIURL, append(opts, a.clientOpts...)...)
	return nil
}

func (a *app) close() error {
	if a.lggr != nil {
		a.lggr.Sync() //nolint:errcheck
	}
	return nil
}

// directOptions selects the local wallet and contract for direct deploys.
type directOptions struct {
	Wallet   string
	Artifact string
	Source   string
}

// manager builds a deploy manager. An empty strategy uses the config value.
func (a *app) manager(strategy string, d directOptions) (*deploy.Manager, error) {
	if strategy == "" {
		strategy = a.cfg.Strategy
	}
	s, err := deploy.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	deployer := deploy.DirectDeployerFunc(func(ctx context.Context, req deploy.DirectRequest) (*deploy.DirectResult, error) {
		return a.deployDirect(ctx, req, d)
	})
	return deploy.NewManager(a.store, a.client,
		deploy.WithStrategy(s),
		deploy.WithDirect(deployer),
		deploy.WithNetworkResolver(a.networkInfo),
		deploy.WithMetrics(a.metrics),
		deploy.WithLogger(a.lggr),
		deploy.WithTransitionHook(func(t deploy.Transition) {
			a.lggr.Debugw("Deploy phase changed", "attempt", t.Attempt, "from", t.From, "to", t.To)
		}),
	)
}

// networkInfo describes chainID from the local registry.
func (a *app) networkInfo(chainID int64) *state.NetworkInfo {
	c, err := a.registry.GetByChainID(chainID)
	if err != nil {
		return nil
	}
	return &state.NetworkInfo{ChainID: c.ChainID, Name: c.DisplayName, Symbol: c.NativeCurrency, Supported: true}
}

// deployDirect wires the local wallet, RPC node and artifact for one direct deploy.
func (a *app) deployDirect(ctx context.Context, req deploy.DirectRequest, d directOptions) (*deploy.DirectResult, error) {
	art, err := a.artifact(ctx, d)
	if err != nil {
		return nil, err
	}

	name := d.Wallet
	if name == "" {
		name = a.cfg.DefaultWallet
	}
	mgr := a.wallets()
	if name == "" {
		w := mgr.Default()
		if w == nil {
			return nil, fmt.Errorf("%w: add one with: tokenforge wallet new <name>", wallet.ErrNoDefault)
		}
		name = w.Name
	}
	signer, err := mgr.Signer(name)
	if err != nil {
		return nil, err
	}

	rpcURL, err := a.rpcURL(ctx, req.ChainID)
	if err != nil {
		return nil, err
	}
	provider := direct.NewLocalWallet(signer, chain.NewEVMClient(rpcURL), direct.WithLocalLogger(a.lggr))
	return direct.NewDeployer(provider, art, direct.WithStore(a.store), direct.WithLogger(a.lggr)).DeployDirect(ctx, req)
}

// rpcURL picks the config override for chainID, then the best registry
// endpoint by rpc_algorithm.
func (a *app) rpcURL(ctx context.Context, chainID int64) (string, error) {
	if u := a.cfg.RPCURL(chainID); u != "" {
		return u, nil
	}
	c, err := a.registry.GetByChainID(chainID)
	if err != nil || len(c.RPCs) == 0 {
		return "", fmt.Errorf("no RPC endpoint for chain %d: set one with: tokenforge config set rpc_urls.%d <url>", chainID, chainID)
	}
	sel := rpc.NewSelector(rpc.WithAlgorithm(rpc.Algorithm(a.cfg.RPCAlgorithm)))
	u, err := sel.Select(ctx, chainID, c.RPCs)
	if err != nil {
		return "", fmt.Errorf("chain %d: %w", chainID, err)
	}
	a.lggr.Debugw("Selected RPC endpoint", "chainId", chainID, "url", u, "algorithm", a.cfg.RPCAlgorithm)
	return u, nil
}

// artifact loads the token contract: --artifact, then artifact_path, then a
// remote compile of --source.
func (a *app) artifact(ctx context.Context, d directOptions) (*direct.Artifact, error) {
	path := d.Artifact
	if path == "" {
		path = a.cfg.ArtifactPath
	}
	if path != "" {
		return direct.LoadArtifact(path)
	}
	if d.Source == "" {
		return nil, errors.New("no token artifact for direct deploy: pass --artifact or --source, or set artifact_path")
	}
	comp, err := a.compile(ctx, d.Source, "", true)
	if err != nil {
		return nil, err
	}
	return direct.FromCompilation(comp)
}

// compile reads a Solidity file and compiles it remotely. An empty contract
// name uses the first contract declared in the file.
func (a *app) compile(ctx context.Context, path, contract string, optimize bool) (*deployapi.Compilation, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	if contract == "" {
		contract = solidity.Extract(string(src)).ContractName
	}
	if contract == "" {
		return nil, fmt.Errorf("%s declares no contract", filepath.Base(path))
	}
	return a.client.Compile(ctx, deployapi.CompileRequest{SourceCode: string(src), ContractName: contract, Optimization: optimize})
}

func (a *app) wallets() *wallet.Manager {
	ks := a.keys
	if ks == nil {
		ks = wallet.DefaultKeystore()
	}
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(a.cfg.WalletsPath())), wallet.WithKeystore(ks))
}

// writeMetrics exports deploy metrics when metrics_file is configured.
func (a *app) writeMetrics() {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.lggr.Warnw("Failed to write metrics file", "path", a.cfg.MetricsFile, "err", err)
	}
}
