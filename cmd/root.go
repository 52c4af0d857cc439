package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tokenforge/cmd.Version=1.2.3" .
var Version = "0.3.0"

// NewRootCmd builds the command tree around a fresh application context.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tokenforge",
		Short: "Create and deploy ERC-20 tokens",
		Long: `tokenforge — create and deploy ERC-20 tokens from the terminal.

  Tokens are deployed through the hosted deploy API. When the API is
  slow or unreachable the token is deployed directly from a local
  signing wallet instead (strategy "remote-fallback", the default).

Config lives in ~/.tokenforge/config.json. Every key can be overridden
with a TOKENFORGE_<KEY> environment variable, e.g. TOKENFORGE_API_URL.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	// TOKENFORGE_CONFIG_DIR env var is the default for --config.
	root.PersistentFlags().StringVar(&a.cfgDir, "config", os.Getenv(config.EnvConfigDir), "config directory (default: ~/.tokenforge)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(
		newDeployCmd(a),
		newNetworksCmd(a),
		newEstimateCmd(a),
		newTxCmd(a),
		newStateCmd(a),
		newWalletCmd(a),
		newInspectCmd(a),
		newCompileCmd(a),
		newConfigCmd(a),
		newStatusCmd(a),
		newVerifyCmd(a),
	)
	return root
}

// Execute runs the root command. Ctrl-C cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
