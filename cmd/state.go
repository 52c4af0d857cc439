package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

func newStateCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the saved wizard and deploy state",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the whole saved state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, a.store.Snapshot())
		},
	}

	get := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a dotted path, e.g. token.deployResult",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := state.ParsePath(args[0])
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Hint(fmt.Sprintf("Valid paths: %v", state.AllPaths())))
				return err
			}
			v, ok := a.store.Get(p)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("(not set)"))
				return nil
			}
			if r, isResult := v.(*state.DeployResult); isResult {
				fmt.Fprintln(cmd.OutOrStdout(), ui.DeployResultBlock(r, ""))
				return nil
			}
			return printJSON(cmd, v)
		},
	}

	reset := &cobra.Command{
		Use:       "reset <section>",
		Short:     "Restore one section (wallet, token, ui) to its defaults",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{state.SectionWallet, state.SectionToken, state.SectionUI},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ResetSection(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Section %q reset.", args[0])))
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved state file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).ConfirmDanger("Delete saved state?") {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			if err := a.store.ClearStorage(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Saved state deleted."))
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	c.AddCommand(show, get, reset, clearCmd)
	return c
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
