package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/price"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

func newNetworksCmd(a *app) *cobra.Command {
	var refresh, known bool
	c := &cobra.Command{
		Use:   "networks [chain-id]",
		Short: "List networks the deploy API can deploy to",
		Long: `List the networks the hosted deploy API supports, or show live
details (gas price, gas limit) for one chain.

Examples:
  tokenforge networks
  tokenforge networks --refresh
  tokenforge networks --known       # local registry, no API call
  tokenforge networks 97`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid chain id %q", args[0])
				}
				d, err := a.client.NetworkInfo(cmd.Context(), id)
				if err != nil {
					return err
				}
				pairs := [][2]string{
					{"Network", ui.ChainName(d.Name)},
					{"Symbol", d.Symbol},
				}
				if d.GasPrice.Valid {
					pairs = append(pairs, [2]string{"Gas price", humanize.Ftoa(d.GasPrice.Value) + " gwei"})
				}
				if d.GasLimit.Valid {
					pairs = append(pairs, [2]string{"Gas limit", humanize.Comma(int64(d.GasLimit.Value))})
				}
				fmt.Fprintln(out, ui.KeyValueBlock(fmt.Sprintf("Chain %d", id), pairs))
				return nil
			}

			if known {
				t := ui.NewTable(ui.Column{Title: "Chain ID"}, ui.Column{Title: "Network"}, ui.Column{Title: "Symbol"}, ui.Column{Title: "Testnet"})
				for _, ch := range a.registry.All() {
					t.AddRow(strconv.FormatInt(ch.ChainID, 10), ch.DisplayName, ch.NativeCurrency, strconv.FormatBool(ch.Testnet))
				}
				fmt.Fprint(out, t.Render())
				return nil
			}

			nets, err := a.client.SupportedNetworks(cmd.Context(), refresh)
			if err != nil {
				fmt.Fprintln(out, ui.Err(err.Error()))
				fmt.Fprintln(out, ui.Hint("List known networks without the API: tokenforge networks --known"))
				return err
			}
			if len(nets) == 0 {
				fmt.Fprintln(out, ui.Info("The deploy API reports no deployable networks."))
				return nil
			}
			t := ui.NewTable(ui.Column{Title: "Chain ID"}, ui.Column{Title: "Network"}, ui.Column{Title: "Symbol"})
			for _, n := range nets {
				t.AddRow(strconv.FormatInt(n.ChainID, 10), n.Name, n.Symbol)
			}
			fmt.Fprint(out, t.Render())
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d network(s) from %s", len(nets), a.client.BaseURL())))
			return nil
		},
	}
	c.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached list")
	c.Flags().BoolVar(&known, "known", false, "list the built-in network registry instead")
	return c
}

func newEstimateCmd(a *app) *cobra.Command {
	var chainID int64
	var fiat string
	c := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of deploying a token",
		Long: `Estimate the cost of deploying a token from the deploy API's live gas
figures, or a fixed per-chain estimate when they are unavailable.

Examples:
  tokenforge estimate --chain 56
  tokenforge estimate --chain 1 --fiat usd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chainID == 0 {
				chainID = a.cfg.DefaultChainID
			}
			e := a.client.EstimateDeployCost(cmd.Context(), chainID)
			source := "live network data"
			if !e.Live {
				source = "fixed estimate, network data unavailable"
			}
			pairs := [][2]string{
				{"Network", ui.ChainName(e.Network)},
				{"Chain ID", strconv.FormatInt(e.ChainID, 10)},
				{"Gas price", e.GasPrice},
				{"Gas limit", humanize.Comma(int64(e.GasLimit))},
				{"Estimated cost", ui.Val(e.CostDisplay)},
			}
			if fiat != "" {
				f := price.NewFetcher(fiat, a.priceOpts...)
				cur := strings.ToUpper(f.Currency())
				cost, _ := strconv.ParseFloat(e.EstimatedCost, 64)
				if v, err := f.Convert(cmd.Context(), cost, e.Symbol); err != nil {
					a.lggr.Debugw("Fiat price unavailable", "symbol", e.Symbol, "err", err)
					pairs = append(pairs, [2]string{"In " + cur, ui.Meta("price unavailable")})
				} else {
					pairs = append(pairs, [2]string{"In " + cur, ui.Val("≈ " + humanize.FormatFloat("#,###.##", v) + " " + cur)})
				}
			}
			pairs = append(pairs, [2]string{"Source", ui.Meta(source)})
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Deploy cost estimate", pairs))
			return nil
		},
	}
	c.Flags().Int64Var(&chainID, "chain", 0, "chain ID (default from config)")
	c.Flags().StringVar(&fiat, "fiat", "", "also show the cost in this currency, e.g. usd (CoinGecko)")
	return c
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the deploy API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Status(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Err("Deploy API unreachable at "+a.client.BaseURL()))
				return err
			}
			pairs := [][2]string{
				{"URL", a.client.BaseURL()},
				{"Status", ui.Val(s.Status)},
			}
			if s.Version != "" {
				pairs = append(pairs, [2]string{"Version", s.Version})
			}
			if s.Message != "" {
				pairs = append(pairs, [2]string{"Message", s.Message})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Deploy API", pairs))
			return nil
		},
	}
}
