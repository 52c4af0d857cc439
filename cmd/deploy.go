package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/deploy"
	"github.com/Mohsinsiddi/tokenforge/internal/state"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

type deployFlags struct {
	name     string
	symbol   string
	decimals uint8
	supply   string
	owner    string
	chainID  int64
	strategy string
	direct   directOptions
}

func newDeployCmd(a *app) *cobra.Command {
	var f deployFlags
	c := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an ERC-20 token",
		Long: `Deploy an ERC-20 token through the hosted deploy API, falling back to a
direct deploy from a local signing wallet when the API is unavailable.

Without --name/--symbol an interactive wizard collects the token details.
Answers are saved in the local state file, so an interrupted wizard keeps
what was entered.

Strategies:
  remote-fallback  hosted API, then direct deploy on timeout or network error
  remote           hosted API only
  direct           local wallet only

Examples:
  tokenforge deploy
  tokenforge deploy --name "Forge Token" --symbol FRG --supply 1000000 --owner 0xYou --chain 97
  tokenforge deploy --strategy direct --wallet alice --artifact ./artifacts/ForgeToken.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, a, f)
		},
	}

	c.Flags().StringVar(&f.name, "name", "", "token name")
	c.Flags().StringVar(&f.symbol, "symbol", "", "token symbol")
	c.Flags().Uint8Var(&f.decimals, "decimals", deploy.MaxDecimals, "token decimals (0-18)")
	c.Flags().StringVar(&f.supply, "supply", "", "total supply in whole tokens")
	c.Flags().StringVar(&f.owner, "owner", "", "owner address (default: connected wallet)")
	c.Flags().Int64Var(&f.chainID, "chain", 0, "target chain ID (default from config)")
	c.Flags().StringVar(&f.strategy, "strategy", "", "remote-fallback | remote | direct (default from config)")
	c.Flags().StringVar(&f.direct.Wallet, "wallet", "", "signing wallet for direct deploys (default wallet if empty)")
	c.Flags().StringVar(&f.direct.Artifact, "artifact", "", "compiled token artifact for direct deploys")
	c.Flags().StringVar(&f.direct.Source, "source", "", "Solidity source compiled remotely for direct deploys")
	return c
}

func runDeploy(cmd *cobra.Command, a *app, f deployFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	mgr, err := a.manager(f.strategy, f.direct)
	if err != nil {
		return err
	}

	chainID := f.chainID
	if f.name == "" && f.symbol == "" {
		res, err := ui.RunTokenWizard(a.store, a.deployNetworks(ctx, out))
		if err != nil {
			return err
		}
		chainID = res.ChainID
	} else {
		owner := f.owner
		if owner == "" {
			owner = a.store.Snapshot().Wallet.Address
		}
		draft := &state.TokenDraft{
			Name:        strings.TrimSpace(f.name),
			Symbol:      strings.TrimSpace(f.symbol),
			Decimals:    f.decimals,
			TotalSupply: strings.TrimSpace(f.supply),
			Owner:       owner,
		}
		if err := a.store.Set(state.PathTokenData, draft); err != nil {
			return err
		}
	}
	if chainID == 0 {
		chainID = a.cfg.DefaultChainID
	}

	if mgr.Strategy() != deploy.DirectOnly {
		fmt.Fprintln(out, ui.Info("A disposable deployer key is created for the hosted API. It is sent once and never stored."))
	}

	detach := ui.WatchDeploy(a.store, cmd.ErrOrStderr(), fmt.Sprintf("Deploying on chain %d…", chainID))
	res, err := mgr.DeployFromStore(ctx, chainID)
	detach()
	a.writeMetrics()
	if err != nil {
		return err
	}

	explorer := ""
	if res.Success && res.Network != nil {
		if c, err := a.registry.GetByChainID(res.Network.ChainID); err == nil {
			explorer = c.TxURL(res.TransactionHash)
		}
	}
	fmt.Fprintln(out, ui.DeployResultBlock(res, explorer))
	if !res.Success {
		return fmt.Errorf("deploy failed (%s)", res.Kind)
	}
	fmt.Fprintln(out, ui.Hint("Track the transaction with: tokenforge tx wait "+res.TransactionHash+fmt.Sprintf(" --chain %d", chainID)))
	return nil
}

// deployNetworks lists the networks offered by the wizard. The deploy API
// list is preferred; the local registry is used when it cannot be fetched.
func (a *app) deployNetworks(ctx context.Context, out io.Writer) []state.NetworkInfo {
	nets, err := a.client.SupportedNetworks(ctx, false)
	if err == nil && len(nets) > 0 {
		infos := make([]state.NetworkInfo, len(nets))
		for i, n := range nets {
			infos[i] = *n.Info()
		}
		return infos
	}
	if err != nil {
		fmt.Fprintln(out, ui.Warn("Deploy API network list unavailable, showing known networks"))
	}
	chains := a.registry.All()
	infos := make([]state.NetworkInfo, len(chains))
	for i, c := range chains {
		infos[i] = *a.networkInfo(c.ChainID)
	}
	return infos
}
