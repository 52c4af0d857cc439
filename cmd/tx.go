package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

func newTxCmd(a *app) *cobra.Command {
	var chainID int64
	c := &cobra.Command{
		Use:   "tx",
		Short: "Check deploy transactions through the deploy API",
	}
	c.PersistentFlags().Int64Var(&chainID, "chain", 0, "chain ID (default from config)")
	chain := func() int64 {
		if chainID == 0 {
			return a.cfg.DefaultChainID
		}
		return chainID
	}

	status := &cobra.Command{
		Use:   "status <hash>",
		Short: "Show the current status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.TransactionStatus(cmd.Context(), args[0], chain())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), txBlock(s))
			return nil
		},
	}

	wait := &cobra.Command{
		Use:   "wait <hash>",
		Short: "Poll until a transaction is confirmed or failed",
		Long: `Poll the deploy API until the transaction is confirmed or failed.
Polls every 10 s for up to 30 attempts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s, err := a.client.WaitForTransaction(cmd.Context(), args[0], chain(), func(s *deployapi.TxStatus) {
				fmt.Fprintln(out, ui.Meta("status: "+s.Status))
			})
			if s != nil {
				fmt.Fprintln(out, txBlock(s))
			}
			return err
		},
	}

	c.AddCommand(status, wait)
	return c
}

func txBlock(s *deployapi.TxStatus) string {
	status := s.Status
	switch s.Status {
	case deployapi.TxConfirmed:
		status = ui.Success(status)
	case deployapi.TxFailed:
		status = ui.Err(status)
	default:
		status = ui.Warn(status)
	}
	pairs := [][2]string{
		{"Hash", ui.Addr(s.Hash)},
		{"Status", status},
	}
	if s.BlockNumber != "" {
		pairs = append(pairs, [2]string{"Block", string(s.BlockNumber)})
	}
	if s.GasUsed != "" {
		pairs = append(pairs, [2]string{"Gas used", string(s.GasUsed)})
	}
	if s.Confirmations.Valid {
		pairs = append(pairs, [2]string{"Confirmations", fmt.Sprintf("%.0f", s.Confirmations.Value)})
	}
	return ui.KeyValueBlock("Transaction", pairs)
}
