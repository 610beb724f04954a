package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"TaxLedger/internal/model"
	"TaxLedger/internal/notifier"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Write the genesis state file if it does not exist yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			st := a.token.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) supply %s held by %s, state in %s\n",
				st.Metadata.Name, st.Metadata.Symbol, st.TotalSupply.Dec(), st.Owner, a.cfg.Token.StateFile)
			return nil
		})
	},
}

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show supply, fees, limits and fee buckets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if statusJSON {
				return printJSON(cmd.OutOrStdout(), a.token.Snapshot())
			}
			st := a.token.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, notifier.FormatStatus(&st))
			fmt.Fprintln(out, notifier.FormatFees(&st))
			fmt.Fprintln(out, notifier.FormatLimits(&st))
			fmt.Fprintln(out, notifier.FormatBuckets(&st))
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the balance of an address in base units",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.token.BalanceOf(model.Address(args[0])).Dec())
			return nil
		})
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Print how much spender may move from owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.token.Allowance(model.Address(args[0]), model.Address(args[1])).Dec())
			return nil
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer base units from --caller to an address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := model.ParseAmount(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			receipt, err := a.token.Transfer(a.caller(), model.Address(args[0]), amount)
			if err != nil {
				return err
			}
			return printReceipt(cmd.OutOrStdout(), receipt)
		})
	},
}

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from <from> <to> <amount>",
	Short: "Transfer on behalf of another address using the --caller allowance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := model.ParseAmount(args[2])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			receipt, err := a.token.TransferFrom(a.caller(), model.Address(args[0]), model.Address(args[1]), amount)
			if err != nil {
				return err
			}
			return printReceipt(cmd.OutOrStdout(), receipt)
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Allow spender to move up to amount from --caller",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := model.ParseAmount(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			return a.token.Approve(a.caller(), model.Address(args[0]), amount)
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the full persisted state as JSON")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReceipt(w io.Writer, r *model.TransferReceipt) error {
	fmt.Fprintf(w, "%s %s -> %s: amount %s, net %s (%s)\n",
		r.Direction, r.From, r.To, r.Amount.Dec(), r.Net.Dec(), r.Regime)
	for _, c := range model.Components {
		if v, ok := r.Allocation[c]; ok && !v.IsZero() {
			fmt.Fprintf(w, "  %s: %s\n", c, v.Dec())
		}
	}
	return nil
}
