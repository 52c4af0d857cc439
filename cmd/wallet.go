package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/ui"
	"github.com/Mohsinsiddi/tokenforge/internal/wallet"
)

func newWalletCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the local wallets used for direct deploys",
	}

	var keyFlag string
	add := &cobra.Command{
		Use:   "add <name> [address]",
		Short: "Add a wallet",
		Long: `Add a signing wallet with --key (stored in the OS keychain), or a
watch-only wallet from an address. Only signing wallets can deploy.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := args[0]
			mgr := a.wallets()

			if keyFlag != "" {
				if err := mgr.AddWithKey(name, keyFlag); err != nil {
					return err
				}
				w, err := mgr.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			} else {
				if len(args) < 2 {
					return fmt.Errorf("address required for watch-only wallet\n  Usage: tokenforge wallet add <name> <address>\n  Or for signing: tokenforge wallet add <name> --key <private-key>")
				}
				if err := mgr.Add(name, &wallet.Wallet{Name: name, Address: args[1], Type: wallet.TypeWatchOnly}); err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
			}
			fmt.Fprintln(out, ui.Hint("Set as default with: tokenforge wallet default "+name))
			return nil
		},
	}
	add.Flags().StringVar(&keyFlag, "key", "", "private key (hex) for a signing wallet")

	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Generate a new signing wallet",
		Long: `Generate a new EVM keypair and store the private key in the OS keychain.
The private key is displayed once, immediately after creation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, hexKey, err := a.wallets().Generate(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.KeyValueBlock("New wallet", [][2]string{
				{"Name", w.Name},
				{"Address", ui.Addr(w.Address)},
			}))
			fmt.Fprintln(out, ui.DangerBox(
				ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once.")+"\n\n"+
					ui.Val(hexKey)+"\n\n"+
					ui.Hint("Fund this address before using it for direct deploys."),
			))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			wallets := a.wallets().List()
			if len(wallets) == 0 {
				fmt.Fprintln(out, ui.Info("No wallets configured yet."))
				fmt.Fprintln(out, ui.Hint("Create one with: tokenforge wallet new deployer"))
				return nil
			}
			t := ui.NewTable(
				ui.Column{Title: "Name"},
				ui.Column{Title: "Address", Width: 42},
				ui.Column{Title: "Type"},
				ui.Column{Title: "Default"},
			)
			for _, w := range wallets {
				def := ""
				if w.IsDefault {
					def = "✓"
				}
				t.AddRow(w.Name, w.Address, w.Type, def)
			}
			fmt.Fprint(out, t.Render())
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
			return nil
		},
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a wallet and its stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := args[0]
			if !yes && !ui.NewPrompter(cmd.InOrStdin(), out).ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
			if err := a.wallets().Remove(name); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
			return nil
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	def := &cobra.Command{
		Use:   "default <name>",
		Short: "Set the wallet used for direct deploys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := a.wallets().SetDefault(name); err != nil {
				return err
			}
			a.cfg.DefaultWallet = name
			if err := a.cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
			return nil
		},
	}

	c.AddCommand(add, newCmd, list, remove, def)
	return c
}
