package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenforge/internal/direct"
	"github.com/Mohsinsiddi/tokenforge/internal/solidity"
	"github.com/Mohsinsiddi/tokenforge/internal/ui"
)

func newInspectCmd(a *app) *cobra.Command {
	var compiler string
	c := &cobra.Command{
		Use:   "inspect <file.sol>",
		Short: "Show the pragma, contract, license and functions of a Solidity file",
		Long: `Read a Solidity file without compiling it and show what it declares.
With --compiler, check that the compiler version satisfies the pragma.

Examples:
  tokenforge inspect contracts/ForgeToken.sol
  tokenforge inspect contracts/ForgeToken.sol --compiler 0.8.24`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			md := solidity.Extract(string(src))
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.KeyValueBlock(orDash(md.ContractName), [][2]string{
				{"Compiler", orDash(md.Pragma)},
				{"License", orDash(md.License)},
				{"Optimized", yesNo(md.Optimized)},
				{"Libraries", orDash(strings.Join(md.Libraries, ", "))},
				{"Imports", fmt.Sprintf("%d", len(md.Imports))},
			}))
			if len(md.Functions) > 0 {
				t := ui.NewTable(ui.Column{Title: "Selector"}, ui.Column{Title: "Signature"})
				for _, f := range md.Functions {
					t.AddRow(f.Selector, f.Signature)
				}
				fmt.Fprint(out, t.Render())
			}

			if compiler != "" {
				ok, err := md.Allows(compiler)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("compiler %s does not satisfy pragma %q", compiler, md.Pragma)
				}
				fmt.Fprintln(out, ui.Success(fmt.Sprintf("compiler %s satisfies %s", compiler, md.Pragma)))
			}
			return nil
		},
	}
	c.Flags().StringVar(&compiler, "compiler", "", "check this solc version against the pragma")
	return c
}

func newCompileCmd(a *app) *cobra.Command {
	var contract, outPath string
	var optimize bool
	c := &cobra.Command{
		Use:   "compile <file.sol>",
		Short: "Compile a Solidity file with the deploy API",
		Long: `Compile a Solidity file with the deploy API's compile-only endpoint and
write a Hardhat-style artifact usable with deploy --artifact.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.compile(cmd.Context(), args[0], contract, optimize)
			if err != nil {
				return err
			}
			art, err := direct.FromCompilation(comp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.KeyValueBlock("Compiled "+comp.ContractName, [][2]string{
				{"Bytecode", fmt.Sprintf("%d bytes", len(art.Bytecode))},
				{"Functions", fmt.Sprintf("%d", len(art.ABI.Methods))},
				{"Constructor inputs", fmt.Sprintf("%d", len(art.ABI.Constructor.Inputs))},
			}))
			if outPath == "" {
				return nil
			}
			data, err := json.MarshalIndent(map[string]any{
				"contractName": comp.ContractName,
				"abi":          comp.ABI,
				"bytecode":     ensure0x(comp.Bytecode),
			}, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success("Artifact written to "+outPath))
			fmt.Fprintln(out, ui.Hint("Deploy it directly with: tokenforge deploy --strategy direct --artifact "+outPath))
			return nil
		},
	}
	c.Flags().StringVar(&contract, "contract", "", "contract to compile (default: first in file)")
	c.Flags().BoolVar(&optimize, "optimize", true, "enable the optimizer")
	c.Flags().StringVarP(&outPath, "out", "o", "", "write the artifact JSON here")
	return c
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
