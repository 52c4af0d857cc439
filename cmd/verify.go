package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
	"github.com/Mohsinsiddi/tokenforge/internal/contract"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

func newVerifyCmd(a *app) *cobra.Command {
	var chainID int64
	c := &cobra.Command{
		Use:   "verify [address]",
		Short: "Read a deployed token back from the chain and compare it with the draft",
		Long: `Call the token's ERC-20 view functions and compare name, symbol, decimals,
total supply and owner with the saved token draft.

Without an address the last successful deploy is verified on its network.

Examples:
  tokenforge verify
  tokenforge verify 0x5FbDB2315678afecb367f032d93F642f64180aa3 --chain 97`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			tok := a.store.Snapshot().Token

			address := ""
			if len(args) == 1 {
				address = args[0]
			} else if r := tok.DeployResult; r != nil && r.Success {
				address = r.ContractAddress
				if chainID == 0 && r.Network != nil {
					chainID = r.Network.ChainID
				}
			}
			if address == "" {
				return errors.New("no deployed token to verify: pass an address")
			}
			if chainID == 0 {
				chainID = a.cfg.DefaultChainID
			}

			url, err := a.rpcURL(ctx, chainID)
			if err != nil {
				return err
			}
			info, err := contract.NewReader(chain.NewEVMClient(url)).TokenInfo(ctx, address)
			if err != nil {
				return err
			}

			supply := wholeTokens(info.TotalSupply, info.Decimals) + " " + info.Symbol
			fmt.Fprintln(out, ui.KeyValueBlock(info.Name, [][2]string{
				{"Address", ui.Addr(info.Address)},
				{"Chain", fmt.Sprintf("%d", chainID)},
				{"Symbol", info.Symbol},
				{"Decimals", fmt.Sprintf("%d", info.Decimals)},
				{"Total supply", supply},
				{"Owner", orDash(info.Owner)},
			}))

			if tok.Data == nil {
				fmt.Fprintln(out, ui.Hint("No saved token draft to compare against."))
				return nil
			}
			mismatches, err := info.Compare(*tok.Data)
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				fmt.Fprintln(out, ui.Success("On-chain token matches the saved draft."))
				return nil
			}
			t := ui.NewTable(ui.Column{Title: "Field"}, ui.Column{Title: "Draft"}, ui.Column{Title: "On chain"})
			for _, m := range mismatches {
				t.AddRow(m.Field, m.Want, m.Got)
			}
			fmt.Fprint(out, t.Render())
			return fmt.Errorf("token differs from the draft in %d field(s)", len(mismatches))
		},
	}
	c.Flags().Int64Var(&chainID, "chain", 0, "chain ID (default: network of the last deploy)")
	return c
}

// wholeTokens renders base units as whole tokens, keeping any fraction.
func wholeTokens(units *big.Int, decimals uint8) string {
	if units == nil {
		return "0"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(units, scale, new(big.Int))
	s := humanize.BigComma(whole)
	if frac.Sign() == 0 {
		return s
	}
	f := frac.String()
	f = strings.Repeat("0", int(decimals)-len(f)) + f
	return s + "." + strings.TrimRight(f, "0")
}
